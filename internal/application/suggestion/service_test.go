package suggestion

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/selection"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
)

const completion = "Recipe 1: Tomato Salad - Fresh and quick.\n1. Chop.\n2. Season.\n"

type ServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	completion *testutils.MockCompletionService
	cache      *memory.CacheRepository
	service    *Service
	active     selection.Active
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.completion = new(testutils.MockCompletionService)
	suite.cache = memory.NewCacheRepository()
	suite.service = NewService(suite.completion, suite.cache, nil, DefaultOptions(), zap.NewNop())

	state := selection.New()
	state.ToggleSelect("Tomato")
	state.ToggleSelect("Lettuce")
	_, _ = state.SetStar("Tomato")
	state.ToggleExclude("Cheese")
	suite.active = state.Active()
}

func (suite *ServiceTestSuite) TestGenerate() {
	suite.Run("Request_ShouldCarryFixedParameters", func() {
		// Arrange
		suite.completion.On("Complete", mock.Anything, outbound.CompletionRequest{
			System:      recipe.SystemInstruction,
			Prompt:      "ideas please",
			MaxTokens:   500,
			Temperature: 0.7,
		}).Return(completion, nil).Once()

		// Act
		text, err := suite.service.Generate(suite.ctx, "ideas please")

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), completion, text)
		suite.completion.AssertExpectations(suite.T())
	})

	suite.Run("SamePromptAgain_ShouldRequestNewCompletion", func() {
		again := "Recipe 1: Tomato Soup - Warm and simple.\n1. Simmer.\n"
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return(again, nil).Once()

		text, err := suite.service.Generate(suite.ctx, "ideas please")

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), again, text)
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 2)
		_, cacheErr := suite.cache.Get(suite.ctx, suite.service.cache.key(suite.completion.Name(), outbound.CompletionRequest{
			System: recipe.SystemInstruction, Prompt: "ideas please", MaxTokens: 500, Temperature: 0.7,
		}))
		assert.ErrorIs(suite.T(), cacheErr, outbound.ErrCacheMiss)
	})

	suite.Run("EmptyPrompt_ShouldFailBeforeRemoteCall", func() {
		_, err := suite.service.Generate(suite.ctx, "   ")

		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 2)
	})

	suite.Run("RemoteError_ShouldBeGenerationError", func() {
		remote := stderrors.New("503 from provider")
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return("", remote).Once()

		_, err := suite.service.Generate(suite.ctx, "another prompt")

		assert.True(suite.T(), errors.Is(err, errors.CodeGeneration))
		assert.ErrorIs(suite.T(), err, remote)
	})

	suite.Run("BlankContent_ShouldBeGenerationError", func() {
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return(" \n", nil).Once()

		_, err := suite.service.Generate(suite.ctx, "third prompt")

		assert.True(suite.T(), errors.Is(err, errors.CodeGeneration))
	})
}

func (suite *ServiceTestSuite) TestConcurrentGenerate() {
	// Arrange
	started := make(chan struct{})
	release := make(chan struct{})
	suite.completion.On("Complete", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(completion, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := suite.service.Generate(suite.ctx, "slow prompt")
		done <- err
	}()
	<-started

	// Act
	_, err := suite.service.Generate(suite.ctx, "slow prompt")
	close(release)

	// Assert
	assert.True(suite.T(), errors.Is(err, errors.CodeConflict))
	select {
	case firstErr := <-done:
		assert.NoError(suite.T(), firstErr)
	case <-time.After(5 * time.Second):
		suite.T().Fatal("first generation did not finish")
	}
	suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 1)
}

func (suite *ServiceTestSuite) TestSuggest() {
	suite.Run("Selection_ShouldParseRecipes", func() {
		// Arrange
		suite.completion.On("Complete", mock.Anything, mock.MatchedBy(func(req outbound.CompletionRequest) bool {
			return req.Prompt == recipe.BuildPrompt(suite.active)
		})).Return(completion, nil).Once()

		// Act
		result, err := suite.service.Suggest(suite.ctx, suite.active)

		// Assert
		require.NoError(suite.T(), err)
		assert.Contains(suite.T(), result.Prompt, "The main ingredient is Tomato")
		require.Len(suite.T(), result.Recipes, 1)
		assert.Equal(suite.T(), "Tomato Salad", result.Recipes[0].Title)
		assert.Equal(suite.T(), "v1", result.ParserVersion)
		assert.False(suite.T(), result.Cached)
		assert.Equal(suite.T(), result.Recipes, suite.service.LastRecipes())
	})

	suite.Run("Failure_ShouldKeepPreviousRecipes", func() {
		suite.service.ClearRecipes()
		previous := []recipe.Recipe{{Title: "Old"}}
		suite.service.last = previous
		other := selection.Active{Selected: []string{"Salmon"}}
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return("", stderrors.New("timeout")).Once()

		_, err := suite.service.Suggest(suite.ctx, other)

		assert.True(suite.T(), errors.Is(err, errors.CodeGeneration))
		assert.Equal(suite.T(), previous, suite.service.LastRecipes())
	})

	suite.Run("EmptySelection_ShouldNotGenerate", func() {
		_, err := suite.service.Suggest(suite.ctx, selection.Active{Excluded: []string{"Cheese"}})

		assert.True(suite.T(), errors.Is(err, errors.CodeValidationFailed))
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 2)
	})

	suite.Run("UnstructuredText_ShouldYieldNoRecipes", func() {
		other := selection.Active{Selected: []string{"Lettuce"}}
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return("I am not sure.", nil).Once()

		result, err := suite.service.Suggest(suite.ctx, other)

		require.NoError(suite.T(), err)
		assert.Empty(suite.T(), result.Recipes)
	})

	suite.Run("ClearRecipes_ShouldForget", func() {
		suite.service.ClearRecipes()
		assert.Empty(suite.T(), suite.service.LastRecipes())
	})
}

func (suite *ServiceTestSuite) TestOptInCache() {
	suite.Run("RepeatedSuggest_ShouldBeServedFromCache", func() {
		// Arrange
		opts := DefaultOptions()
		opts.CacheTTL = time.Hour
		service := NewService(suite.completion, suite.cache, nil, opts, zap.NewNop())
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return(completion, nil).Once()

		// Act
		first, err1 := service.Suggest(suite.ctx, suite.active)
		second, err2 := service.Suggest(suite.ctx, suite.active)

		// Assert
		require.NoError(suite.T(), err1)
		require.NoError(suite.T(), err2)
		assert.False(suite.T(), first.Cached)
		assert.True(suite.T(), second.Cached)
		assert.Equal(suite.T(), first.Recipes, second.Recipes)
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 1)
	})

	suite.Run("DefaultOptions_ShouldNotTouchCache", func() {
		// Arrange
		cache := new(testutils.MockCacheRepository)
		service := NewService(suite.completion, cache, nil, DefaultOptions(), zap.NewNop())
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return(completion, nil).Twice()

		// Act
		_, err1 := service.Generate(suite.ctx, "uncached prompt")
		_, err2 := service.Generate(suite.ctx, "uncached prompt")

		// Assert
		require.NoError(suite.T(), err1)
		require.NoError(suite.T(), err2)
		cache.AssertNotCalled(suite.T(), "Get", mock.Anything, mock.Anything)
		cache.AssertNotCalled(suite.T(), "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 3)
	})
}

func (suite *ServiceTestSuite) TestCacheFailure() {
	// Arrange
	broken := new(testutils.MockCacheRepository)
	broken.On("Get", mock.Anything, mock.Anything).Return(nil, stderrors.New("redis down"))
	broken.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("redis down"))
	opts := DefaultOptions()
	opts.CacheTTL = time.Hour
	service := NewService(suite.completion, broken, nil, opts, zap.NewNop())
	suite.completion.On("Complete", mock.Anything, mock.Anything).Return(completion, nil).Once()

	// Act
	text, err := service.Generate(suite.ctx, "prompt")

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), completion, text)
	broken.AssertCalled(suite.T(), "Set", mock.Anything, mock.Anything, []byte(completion), time.Hour)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
