package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/tests"
)

func TestClassAPI_Create(t *testing.T) {
	app, _ := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/classes",
			body:     []byte(`{"nom": "EP Les Flamboyants", "niveau": "  "}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"niveau": "ce champ est obligatoire",
				"annee_scolaire": "ce champ est obligatoire",
				"enseignant": "ce champ est obligatoire"
			}`),
		},
	})

	var cls class.Class
	rec := do(t, app, http.MethodPost, "/api/classes", []byte(`{
		"nom": " EP Les Flamboyants ",
		"niveau": "6ème A",
		"annee_scolaire": "2025-2026",
		"enseignant": "Mme Kabeya"
	}`), &cls)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, cls.ID)
	assert.Equal(t, "EP Les Flamboyants", cls.School)
	assert.Equal(t, "6ème A", cls.Level)
	assert.False(t, cls.CreatedAt.IsZero())
}

func TestClassAPI_QueryAndRetrieve(t *testing.T) {
	app, r := setup(t)
	cls1 := testutil.CreateClass(t, r.class, "5ème A")
	cls2 := testutil.CreateClass(t, r.class, "6ème A")

	var classes []class.Class
	rec := do(t, app, http.MethodGet, "/api/classes", nil, &classes)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, classes, 2)
	assert.Equal(t, cls1.ID, classes[0].ID)
	assert.Equal(t, cls2.ID, classes[1].ID)

	var got class.Class
	rec = do(t, app, http.MethodGet, "/api/classes/"+cls2.ID, nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "6ème A", got.Level)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "unknown class",
			method:   http.MethodGet,
			path:     "/api/classes/unknown",
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Classe non trouvée"}`),
		},
	})
}

func TestClassAPI_Update(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "5ème A")

	var got class.Class
	rec := do(t, app, http.MethodPut, "/api/classes/"+cls.ID, []byte(`{"enseignant": "M. Ilunga", "niveau": " "}`), &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cls.ID, got.ID)
	assert.Equal(t, "M. Ilunga", got.Teacher)
	assert.Equal(t, cls.Level, got.Level, "blank fields keep their value")
	assert.Equal(t, cls.School, got.School)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "unknown class",
			method:   http.MethodPut,
			path:     "/api/classes/unknown",
			body:     []byte(`{"enseignant": "M. Ilunga"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Classe non trouvée"}`),
		},
	})
}

func TestClassAPI_Delete(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "5ème A")
	std := testutil.CreateStudent(t, r.student, cls.ID, "Mbuyi", "Grace")
	comp := testutil.CreateComposition(t, r.composition, cls.ID, 1)
	sc := testutil.CreateScore(t, r.score, comp.ID, std.ID, scoresFor(120))

	runHTTPTests(t, app, []httpTest{
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/api/classes/" + cls.ID,
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Classe supprimée avec succès"}`),
		},
		{
			name:     "already deleted",
			method:   http.MethodDelete,
			path:     "/api/classes/" + cls.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Classe non trouvée"}`),
		},
		{
			name:     "students cascade",
			method:   http.MethodGet,
			path:     "/api/eleves/" + std.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Élève non trouvé"}`),
		},
		{
			name:     "compositions cascade",
			method:   http.MethodGet,
			path:     "/api/compositions/" + comp.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Composition non trouvée"}`),
		},
		{
			name:     "scores cascade",
			method:   http.MethodGet,
			path:     "/api/notes/" + sc.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Note non trouvée"}`),
		},
	})
}
