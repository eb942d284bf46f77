package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/tests"
)

func TestCompositionAPI_Create(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "6ème A")
	testutil.CreateComposition(t, r.composition, cls.ID, 1)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/compositions",
			body:     []byte(`{"classe_id": "` + cls.ID + `", "numero": 2, "date": "2025-11-20"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"titre": "ce champ est obligatoire", "mois": "ce champ est obligatoire"}`),
		},
		{
			name:     "invalid date",
			method:   http.MethodPost,
			path:     "/api/compositions",
			body:     []byte(`{"classe_id": "` + cls.ID + `", "numero": 2, "date": "20/11/2025", "titre": "2e", "mois": "Novembre"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date": "date invalide (format attendu: AAAA-MM-JJ)"}`),
		},
		{
			name:     "number taken in class",
			method:   http.MethodPost,
			path:     "/api/compositions",
			body:     []byte(`{"classe_id": "` + cls.ID + `", "numero": 1, "date": "2025-11-20", "titre": "2e", "mois": "Novembre"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"numero": "une composition avec ce numéro existe déjà pour cette classe"}`),
		},
		{
			name:     "unknown class",
			method:   http.MethodPost,
			path:     "/api/compositions",
			body:     []byte(`{"classe_id": "unknown", "numero": 1, "date": "2025-11-20", "titre": "1re", "mois": "Novembre"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Classe non trouvée"}`),
		},
	})

	var fldErrs map[string]string
	rec := do(t, app, http.MethodPost, "/api/compositions",
		[]byte(`{"classe_id": "`+cls.ID+`", "numero": -3, "date": "2025-11-20", "titre": "2e", "mois": "Novembre"}`), &fldErrs)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fldErrs, "numero")

	var comp composition.Composition
	rec = do(t, app, http.MethodPost, "/api/compositions",
		[]byte(`{"classe_id": "`+cls.ID+`", "numero": 2, "date": "2025-11-20", "titre": " 2e composition ", "mois": "Novembre"}`), &comp)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, comp.ID)
	assert.Equal(t, 2, comp.Number)
	assert.Equal(t, "2025-11-20", comp.Date)
	assert.Equal(t, "2e composition", comp.Title)
}

func TestCompositionAPI_Query(t *testing.T) {
	app, r := setup(t)
	cls1 := testutil.CreateClass(t, r.class, "5ème A")
	cls2 := testutil.CreateClass(t, r.class, "6ème A")
	c3 := testutil.CreateComposition(t, r.composition, cls1.ID, 3)
	c1 := testutil.CreateComposition(t, r.composition, cls1.ID, 1)
	testutil.CreateComposition(t, r.composition, cls2.ID, 1)
	c2 := testutil.CreateComposition(t, r.composition, cls1.ID, 2)

	var comps []composition.Composition
	rec := do(t, app, http.MethodGet, "/api/compositions?classe_id="+cls1.ID, nil, &comps)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := make([]string, 0, len(comps))
	for _, comp := range comps {
		ids = append(ids, comp.ID)
	}
	assert.Equal(t, []string{c1.ID, c2.ID, c3.ID}, ids, "sorted by number")

	rec = do(t, app, http.MethodGet, "/api/compositions", nil, &comps)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, comps, 4)
}

func TestCompositionAPI_Update(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "6ème A")
	c1 := testutil.CreateComposition(t, r.composition, cls.ID, 1)
	testutil.CreateComposition(t, r.composition, cls.ID, 2)

	var got composition.Composition
	rec := do(t, app, http.MethodPut, "/api/compositions/"+c1.ID, []byte(`{"titre": "Première composition", "numero": 1}`), &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Première composition", got.Title)
	assert.Equal(t, 1, got.Number, "keeping its own number is allowed")
	assert.Equal(t, c1.Date, got.Date)
	assert.Equal(t, cls.ID, got.ClassID)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "number taken",
			method:   http.MethodPut,
			path:     "/api/compositions/" + c1.ID,
			body:     []byte(`{"numero": 2}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"numero": "une composition avec ce numéro existe déjà pour cette classe"}`),
		},
		{
			name:     "unknown composition",
			method:   http.MethodPut,
			path:     "/api/compositions/unknown",
			body:     []byte(`{"numero": 3}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Composition non trouvée"}`),
		},
	})
}

func TestCompositionAPI_Delete(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "6ème A")
	std := testutil.CreateStudent(t, r.student, cls.ID, "Mbuyi", "Grace")
	comp := testutil.CreateComposition(t, r.composition, cls.ID, 1)
	sc := testutil.CreateScore(t, r.score, comp.ID, std.ID, scoresFor(120))

	runHTTPTests(t, app, []httpTest{
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/api/compositions/" + comp.ID,
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Composition supprimée avec succès"}`),
		},
		{
			name:     "scores cascade",
			method:   http.MethodGet,
			path:     "/api/notes/" + sc.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Note non trouvée"}`),
		},
		{
			name:     "results of a deleted composition",
			method:   http.MethodGet,
			path:     "/api/resultats/" + comp.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Composition non trouvée"}`),
		},
	})
}
