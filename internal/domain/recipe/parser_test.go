package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TextParserTestSuite struct {
	suite.Suite
	parser Parser
}

func (suite *TextParserTestSuite) SetupTest() {
	suite.parser = NewTextParser()
}

func (suite *TextParserTestSuite) TestEmptyInput() {
	suite.Run("EmptyText_ShouldReturnEmptyList", func() {
		recipes := suite.parser.Parse("")
		assert.NotNil(suite.T(), recipes)
		assert.Empty(suite.T(), recipes)
	})

	suite.Run("Whitespace_ShouldReturnEmptyList", func() {
		assert.Empty(suite.T(), suite.parser.Parse("  \n\n \t"))
	})

	suite.Run("NoStructure_ShouldDegradeToNothing", func() {
		assert.Empty(suite.T(), suite.parser.Parse("Sorry, I cannot help with that."))
	})
}

func (suite *TextParserTestSuite) TestRequestedFormat() {
	suite.Run("RecipeMarkers_ShouldSplitRecipes", func() {
		// Arrange
		text := "Here are some ideas:\n\n" +
			"Recipe 1: Tomato Bruschetta - A classic Italian appetizer.\n" +
			"1. Dice the tomatoes.\n" +
			"2. Spoon onto toasted bread.\n\n" +
			"Recipe 2: Caprese Salad - Tomatoes with mozzarella.\n" +
			"1. Slice everything.\n" +
			"2. Drizzle with balsamic.\n"

		// Act
		recipes := suite.parser.Parse(text)

		// Assert
		require.Len(suite.T(), recipes, 2)
		assert.Equal(suite.T(), Recipe{
			Title:       "Tomato Bruschetta",
			Description: "A classic Italian appetizer.",
			FullRecipe:  "1. Dice the tomatoes.\n2. Spoon onto toasted bread.",
		}, recipes[0])
		assert.Equal(suite.T(), "Caprese Salad", recipes[1].Title)
		assert.Equal(suite.T(), []string{"1. Slice everything.", "2. Drizzle with balsamic."}, recipes[1].Steps())
	})
}

func (suite *TextParserTestSuite) TestMarkdown() {
	suite.Run("HeadingsAndSections_ShouldParse", func() {
		text := "### 1. Tomato Soup\n" +
			"A warming soup.\n" +
			"**Ingredients:**\n" +
			"- 4 tomatoes\n" +
			"**Instructions:**\n" +
			"1. Simmer the tomatoes.\n\n" +
			"### 2. Salmon Salad\n" +
			"Light and fresh.\n" +
			"1. Flake the salmon.\n"

		recipes := suite.parser.Parse(text)

		require.Len(suite.T(), recipes, 2)
		assert.Equal(suite.T(), "Tomato Soup", recipes[0].Title)
		assert.Equal(suite.T(), "A warming soup.", recipes[0].Description)
		assert.Contains(suite.T(), recipes[0].FullRecipe, "1. Simmer the tomatoes.")
		assert.Equal(suite.T(), "Salmon Salad", recipes[1].Title)
	})

	suite.Run("BoldTitles_ShouldParse", func() {
		text := "1. **Chicken Stir Fry**: Quick weeknight dinner.\n" +
			"   - Slice the chicken.\n" +
			"   - Fry with **hot** oil.\n" +
			"2. **Cheddar Omelette** - Fluffy eggs with cheese.\n"

		recipes := suite.parser.Parse(text)

		require.Len(suite.T(), recipes, 2)
		assert.Equal(suite.T(), "Chicken Stir Fry", recipes[0].Title)
		assert.Equal(suite.T(), "Quick weeknight dinner.", recipes[0].Description)
		assert.Equal(suite.T(), "- Slice the chicken.\n- Fry with **hot** oil.", recipes[0].FullRecipe)
		assert.Equal(suite.T(), "Fluffy eggs with cheese.", recipes[1].Description)
	})

	suite.Run("TitleLabels_ShouldParse", func() {
		text := "Title: Lettuce Wraps\nDescription: Crunchy and light.\n1. Wash the lettuce.\n"

		recipes := suite.parser.Parse(text)

		require.Len(suite.T(), recipes, 1)
		assert.Equal(suite.T(), Recipe{
			Title:       "Lettuce Wraps",
			Description: "Crunchy and light.",
			FullRecipe:  "1. Wash the lettuce.",
		}, recipes[0])
	})

	suite.Run("EmptyHeading_ShouldBeDropped", func() {
		text := "# Recipe ideas\n## Tomato Toast\nToast with tomato.\n"

		recipes := suite.parser.Parse(text)

		require.Len(suite.T(), recipes, 1)
		assert.Equal(suite.T(), "Tomato Toast", recipes[0].Title)
	})
}

func (suite *TextParserTestSuite) TestUnmarkedText() {
	suite.Run("OneRecipePerLine_ShouldParseEachLine", func() {
		text := "1. Tomato Bruschetta - Toasted bread with tomatoes.\n2. Caprese Salad: Tomatoes and mozzarella.\n"

		recipes := suite.parser.Parse(text)

		require.Len(suite.T(), recipes, 2)
		assert.Equal(suite.T(), "Tomato Bruschetta", recipes[0].Title)
		assert.Equal(suite.T(), "Tomatoes and mozzarella.", recipes[1].Description)
		assert.Empty(suite.T(), recipes[1].FullRecipe)
	})

	suite.Run("Paragraphs_ShouldUseFirstLineAsTitle", func() {
		text := "Tomato Pasta\nA hearty dinner.\n1. Boil pasta.\n2. Add sauce.\n\nEnjoy!"

		recipes := suite.parser.Parse(text)

		require.Len(suite.T(), recipes, 1)
		assert.Equal(suite.T(), Recipe{
			Title:       "Tomato Pasta",
			Description: "A hearty dinner.",
			FullRecipe:  "1. Boil pasta.\n2. Add sauce.",
		}, recipes[0])
	})

	suite.Run("CRLFLineEndings_ShouldParse", func() {
		recipes := suite.parser.Parse("Recipe 1: Soup - Hot.\r\n1. Heat.\r\n")
		require.Len(suite.T(), recipes, 1)
		assert.Equal(suite.T(), "1. Heat.", recipes[0].FullRecipe)
	})
}

func (suite *TextParserTestSuite) TestVersion() {
	assert.Equal(suite.T(), "v1", suite.parser.Version())
}

func TestTextParserTestSuite(t *testing.T) {
	suite.Run(t, new(TextParserTestSuite))
}

func TestSplitLines(t *testing.T) {
	t.Run("Text_ShouldSplitOnNewlines", func(t *testing.T) {
		assert.Equal(t, []string{"one", "", "two"}, SplitLines("\n one\n\ntwo \n"))
	})

	t.Run("Blank_ShouldReturnEmpty", func(t *testing.T) {
		lines := SplitLines("   ")
		assert.NotNil(t, lines)
		assert.Empty(t, lines)
	})
}
