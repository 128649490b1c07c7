package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/application/inventory"
	"github.com/alchemorsel/pantry/internal/application/suggestion"
	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/selection"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
)

func noLimit(next http.Handler) http.Handler { return next }

type HandlersTestSuite struct {
	suite.Suite
	store      *memory.DocumentStore
	images     *testutils.MockStorageService
	completion *testutils.MockCompletionService
	ws         *Workspace
	router     chi.Router
	asserts    *testutils.HTTPAssertions
}

func (suite *HandlersTestSuite) SetupTest() {
	logger := zap.NewNop()
	suite.store = memory.NewDocumentStore()
	suite.images = new(testutils.MockStorageService)
	suite.completion = new(testutils.MockCompletionService)

	controller := inventory.NewController(suite.store, suite.images, nil, logger)
	service := suggestion.NewService(suite.completion, nil, nil, suggestion.DefaultOptions(), logger)
	suite.ws = NewWorkspace(controller, service)
	suite.asserts = testutils.NewHTTPAssertions(suite.T())

	recipes := NewRecipesAPI(suite.ws, logger)
	r := chi.NewRouter()
	r.Post("/generate-recipes", recipes.GenerateRecipes)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pantry", NewPantryAPI(suite.ws, UploadLimits{AllowedTypes: []string{"image/png"}}, logger).Routes)
		r.Route("/selection", NewSelectionAPI(suite.ws, logger).Routes)
		r.Route("/recipes", func(r chi.Router) { recipes.Routes(r, noLimit) })
	})
	suite.router = r
}

func (suite *HandlersTestSuite) seed(names ...string) {
	for i, n := range names {
		_, err := suite.store.Create(context.Background(), pantry.Collection, map[string]any{
			"name": n, "quantity": i + 1, "image": "", "expirationDate": "",
		})
		require.NoError(suite.T(), err)
	}
}

func (suite *HandlersTestSuite) do(method, path string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	return rec.Result()
}

func (suite *HandlersTestSuite) view(resp *http.Response) inbound.InventoryView {
	var v inbound.InventoryView
	suite.asserts.JSONResponse(resp, &v)
	return v
}

func (suite *HandlersTestSuite) TestGenerateRecipes() {
	suite.Run("Success_ShouldReturnLines", func() {
		// Arrange
		suite.completion.On("Complete", mock.Anything, mock.MatchedBy(func(req outbound.CompletionRequest) bool {
			return req.Prompt == "tomato ideas"
		})).Return("  1. Soup\n2. Salad  ", nil).Once()

		// Act
		resp := suite.do(http.MethodPost, "/generate-recipes", map[string]string{"prompt": "tomato ideas"})

		// Assert
		suite.asserts.StatusCode(resp, http.StatusOK)
		var body GenerateRecipesResponse
		suite.asserts.JSONResponse(resp, &body)
		assert.Equal(suite.T(), []string{"1. Soup", "2. Salad"}, body.Recipes)
	})

	suite.Run("MissingPrompt_ShouldReturn400", func() {
		resp := suite.do(http.MethodPost, "/generate-recipes", map[string]string{})

		suite.asserts.StatusCode(resp, http.StatusBadRequest)
		var body MessageResponse
		suite.asserts.JSONResponse(resp, &body)
		assert.Equal(suite.T(), "Prompt is required", body.Message)
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 1)
	})

	suite.Run("OversizedPrompt_ShouldReturn400", func() {
		resp := suite.do(http.MethodPost, "/generate-recipes", map[string]string{"prompt": strings.Repeat("a", 4001)})

		suite.asserts.StatusCode(resp, http.StatusBadRequest)
		var body MessageResponse
		suite.asserts.JSONResponse(resp, &body)
		assert.Equal(suite.T(), "Prompt is too long", body.Message)
		suite.completion.AssertNumberOfCalls(suite.T(), "Complete", 1)
	})

	suite.Run("CompletionFailure_ShouldReturnGeneric500", func() {
		suite.completion.On("Complete", mock.Anything, mock.Anything).Return("", stderrors.New("quota")).Once()

		resp := suite.do(http.MethodPost, "/generate-recipes", map[string]string{"prompt": "other"})

		suite.asserts.StatusCode(resp, http.StatusInternalServerError)
		var body MessageResponse
		suite.asserts.JSONResponse(resp, &body)
		assert.Equal(suite.T(), "Error generating recipes", body.Message)
	})
}

func (suite *HandlersTestSuite) TestPantryLifecycle() {
	suite.seed("Tomato", "Cheddar")

	suite.Run("Load_ShouldReturnItems", func() {
		resp := suite.do(http.MethodPost, "/api/v1/pantry/load", nil)

		suite.asserts.StatusCode(resp, http.StatusOK)
		v := suite.view(resp)
		assert.True(suite.T(), v.Loaded)
		assert.Equal(suite.T(), 2, v.Total)
	})

	suite.Run("AddNew_ShouldAppendItem", func() {
		suite.asserts.StatusCode(suite.do(http.MethodPost, "/api/v1/pantry/new", nil), http.StatusOK)
		suite.asserts.StatusCode(suite.do(http.MethodPatch, "/api/v1/pantry/items/new",
			inbound.UpdateFieldCommand{Field: "name", Value: "  Lettuce "}), http.StatusOK)
		suite.asserts.StatusCode(suite.do(http.MethodPost, "/api/v1/pantry/items/new/quantity",
			inbound.AdjustQuantityCommand{Delta: 2}), http.StatusOK)

		resp := suite.do(http.MethodPost, "/api/v1/pantry/items/new/commit", nil)

		suite.asserts.StatusCode(resp, http.StatusOK)
		v := suite.view(resp)
		require.Len(suite.T(), v.Items, 3)
		assert.Equal(suite.T(), "Lettuce", v.Items[2].Name)
		assert.Equal(suite.T(), 2, v.Items[2].Quantity)
		assert.Nil(suite.T(), v.Session)
	})

	suite.Run("InvalidDraft_ShouldReturn400", func() {
		suite.do(http.MethodPost, "/api/v1/pantry/new", nil)

		resp := suite.do(http.MethodPost, "/api/v1/pantry/items/new/commit", nil)

		suite.asserts.StatusCode(resp, http.StatusBadRequest)
		suite.asserts.ErrorCode(resp, errors.CodeValidationFailed)
	})

	suite.Run("Filter_ShouldNarrowView", func() {
		resp := suite.do(http.MethodGet, "/api/v1/pantry?q=tom", nil)

		v := suite.view(resp)
		require.Len(suite.T(), v.Items, 1)
		assert.Equal(suite.T(), "Tomato", v.Items[0].Name)
		assert.Equal(suite.T(), 3, v.Total)
		suite.do(http.MethodGet, "/api/v1/pantry?q=", nil)
	})

	suite.Run("Sort_ShouldValidateKey", func() {
		resp := suite.do(http.MethodPost, "/api/v1/pantry/sort", inbound.SortCommand{Key: "colour"})

		suite.asserts.StatusCode(resp, http.StatusBadRequest)
		suite.asserts.ErrorCode(resp, errors.CodeValidationFailed)
	})

	suite.Run("EditThenCancel_ShouldKeepCanonicalRow", func() {
		v := suite.view(suite.do(http.MethodGet, "/api/v1/pantry", nil))
		id := v.Items[0].ID
		original := v.Items[0].Name

		suite.do(http.MethodPost, "/api/v1/pantry/items/"+id+"/edit", nil)
		suite.do(http.MethodPatch, "/api/v1/pantry/items/"+id, inbound.UpdateFieldCommand{Field: "name", Value: "Changed"})
		resp := suite.do(http.MethodPost, "/api/v1/pantry/items/"+id+"/cancel", nil)

		v = suite.view(resp)
		assert.Equal(suite.T(), original, v.Items[0].Name)
		assert.Nil(suite.T(), v.Session)
	})

	suite.Run("RemoveUnknown_ShouldReturn404", func() {
		resp := suite.do(http.MethodDelete, "/api/v1/pantry/items/missing", nil)

		suite.asserts.StatusCode(resp, http.StatusNotFound)
	})

	suite.Run("Catalog_ShouldFilterByPrefix", func() {
		resp := suite.do(http.MethodGet, "/api/v1/pantry/catalog?prefix=sal", nil)

		var body struct {
			Entries []pantry.CatalogEntry `json:"entries"`
		}
		suite.asserts.JSONResponse(resp, &body)
		require.Len(suite.T(), body.Entries, 1)
		assert.Equal(suite.T(), "Salmon", body.Entries[0].Name)
	})
}

func (suite *HandlersTestSuite) TestConcurrentWriteRejected() {
	// Arrange
	release, err := suite.ws.acquire("item:abc")
	require.NoError(suite.T(), err)
	defer release()

	// Act
	resp := suite.do(http.MethodDelete, "/api/v1/pantry/items/abc", nil)

	// Assert
	suite.asserts.StatusCode(resp, http.StatusConflict)
	suite.asserts.ErrorCode(resp, errors.CodeConflict)
}

func (suite *HandlersTestSuite) TestAttachImage() {
	suite.do(http.MethodPost, "/api/v1/pantry/load", nil)
	suite.do(http.MethodPost, "/api/v1/pantry/new", nil)

	png := []byte("\x89PNG\r\n\x1a\nrest")
	upload := func(contentType string, data []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="image"; filename="tomato.png"`}
		header["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(header)
		require.NoError(suite.T(), err)
		_, _ = part.Write(data)
		require.NoError(suite.T(), mw.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/pantry/items/new/image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		suite.router.ServeHTTP(rec, req)
		return rec.Result()
	}

	suite.Run("Png_ShouldUploadAndSetDraft", func() {
		suite.images.On("Upload", mock.Anything, "pantry-images/tomato.png", mock.Anything, "image/png").
			Return("http://localhost/uploads/pantry-images/tomato.png", nil).Once()

		resp := upload("image/png", png)

		suite.asserts.StatusCode(resp, http.StatusOK)
		var body struct {
			URL     string              `json:"url"`
			Session *pantry.EditSession `json:"session"`
		}
		suite.asserts.JSONResponse(resp, &body)
		assert.Equal(suite.T(), body.URL, body.Session.Draft.Image)
	})

	suite.Run("MislabelledPng_ShouldUseSniffedType", func() {
		suite.images.On("Upload", mock.Anything, "pantry-images/tomato.png", mock.Anything, "image/png").
			Return("http://localhost/uploads/pantry-images/tomato.png", nil).Once()

		resp := upload("image/tiff", png)

		suite.asserts.StatusCode(resp, http.StatusOK)
	})

	suite.Run("TextDeclaredAsPng_ShouldReturn400", func() {
		resp := upload("image/png", []byte("<html><script>alert(1)</script></html>"))

		suite.asserts.StatusCode(resp, http.StatusBadRequest)
		suite.asserts.ErrorCode(resp, errors.CodeValidationFailed)
		suite.images.AssertNumberOfCalls(suite.T(), "Upload", 2)
	})
}

func (suite *HandlersTestSuite) TestSelectionAndSuggest() {
	suite.seed("Tomato", "Lettuce", "Cheese")
	suite.do(http.MethodPost, "/api/v1/pantry/load", nil)

	suite.Run("UnknownName_ShouldReturn404", func() {
		resp := suite.do(http.MethodPost, "/api/v1/selection/select", inbound.IngredientCommand{Name: "Caviar"})
		suite.asserts.StatusCode(resp, http.StatusNotFound)
	})

	suite.Run("StarUnselected_ShouldReturn400", func() {
		resp := suite.do(http.MethodPost, "/api/v1/selection/star", inbound.IngredientCommand{Name: "Tomato"})
		suite.asserts.StatusCode(resp, http.StatusBadRequest)
	})

	suite.Run("Classify_ShouldBuildActive", func() {
		suite.do(http.MethodPost, "/api/v1/selection/select", inbound.IngredientCommand{Name: "Tomato"})
		suite.do(http.MethodPost, "/api/v1/selection/select", inbound.IngredientCommand{Name: "Lettuce"})
		suite.do(http.MethodPost, "/api/v1/selection/star", inbound.IngredientCommand{Name: "Tomato"})
		resp := suite.do(http.MethodPost, "/api/v1/selection/exclude", inbound.IngredientCommand{Name: "Cheese"})

		var v SelectionView
		suite.asserts.JSONResponse(resp, &v)
		assert.Equal(suite.T(), selection.Active{
			Selected: []string{"Tomato", "Lettuce"},
			Primary:  "Tomato",
			Excluded: []string{"Cheese"},
		}, v.Active)
		assert.Equal(suite.T(), selection.Starred, v.Statuses["Tomato"])
	})

	suite.Run("Suggest_ShouldParseRecipes", func() {
		suite.completion.On("Complete", mock.Anything, mock.Anything).
			Return("Recipe 1: Tomato Salad - Fresh.\n1. Chop.\n", nil).Once()

		resp := suite.do(http.MethodPost, "/api/v1/recipes/suggest", nil)

		suite.asserts.StatusCode(resp, http.StatusOK)
		var result inbound.SuggestionResult
		suite.asserts.JSONResponse(resp, &result)
		require.Len(suite.T(), result.Recipes, 1)
		assert.Equal(suite.T(), "Tomato Salad", result.Recipes[0].Title)
		assert.Contains(suite.T(), result.Prompt, "Cheese")
	})

	suite.Run("Last_ShouldReturnStoredRecipes", func() {
		var body struct {
			Recipes []recipe.Recipe `json:"recipes"`
		}
		suite.asserts.JSONResponse(suite.do(http.MethodGet, "/api/v1/recipes", nil), &body)
		assert.Len(suite.T(), body.Recipes, 1)
	})

	suite.Run("Clear_ShouldReturn204", func() {
		resp := suite.do(http.MethodDelete, "/api/v1/recipes", nil)
		suite.asserts.StatusCode(resp, http.StatusNoContent)
	})

	suite.Run("ResetThenSuggest_ShouldFailValidation", func() {
		suite.do(http.MethodPost, "/api/v1/selection/reset", nil)

		resp := suite.do(http.MethodPost, "/api/v1/recipes/suggest", nil)

		suite.asserts.StatusCode(resp, http.StatusBadRequest)
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
