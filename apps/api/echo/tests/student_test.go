package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/carnet/core/student"
	"github.com/trezcool/carnet/tests"
)

func TestStudentAPI_Create(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "6ème A")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/eleves",
			body:     []byte(`{"nom": "Mbuyi"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"prenom": "ce champ est obligatoire", "classe_id": "ce champ est obligatoire"}`),
		},
		{
			name:     "invalid birth date",
			method:   http.MethodPost,
			path:     "/api/eleves",
			body:     []byte(`{"nom": "Mbuyi", "prenom": "Grace", "classe_id": "` + cls.ID + `", "date_naissance": "12/03/2014"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date_naissance": "date invalide (format attendu: AAAA-MM-JJ)"}`),
		},
		{
			name:     "unknown class",
			method:   http.MethodPost,
			path:     "/api/eleves",
			body:     []byte(`{"nom": "Mbuyi", "prenom": "Grace", "classe_id": "unknown"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Classe non trouvée"}`),
		},
	})

	var std student.Student
	rec := do(t, app, http.MethodPost, "/api/eleves", []byte(`{
		"nom": "Mbuyi",
		"prenom": "Grace",
		"classe_id": "`+cls.ID+`",
		"date_naissance": "2014-03-12"
	}`), &std)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, std.ID)
	assert.Equal(t, cls.ID, std.ClassID)
	require.NotNil(t, std.BirthDate)
	assert.Equal(t, "2014-03-12", *std.BirthDate)

	rec = do(t, app, http.MethodPost, "/api/eleves", []byte(`{"nom": "Ilunga", "prenom": "Paul", "classe_id": "`+cls.ID+`"}`), &std)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, std.BirthDate)
}

func TestStudentAPI_Query(t *testing.T) {
	app, r := setup(t)
	cls1 := testutil.CreateClass(t, r.class, "5ème A")
	cls2 := testutil.CreateClass(t, r.class, "6ème A")
	s1 := testutil.CreateStudent(t, r.student, cls1.ID, "Mbuyi", "Grace")
	s2 := testutil.CreateStudent(t, r.student, cls2.ID, "Ilunga", "Paul")
	s3 := testutil.CreateStudent(t, r.student, cls1.ID, "Kasongo", "Ruth")

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "all", path: "/api/eleves", wantIDs: []string{s1.ID, s2.ID, s3.ID}},
		{name: "by class, enrollment order", path: "/api/eleves?classe_id=" + cls1.ID, wantIDs: []string{s1.ID, s3.ID}},
		{name: "unknown class", path: "/api/eleves?classe_id=unknown", wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var students []student.Student
			rec := do(t, app, http.MethodGet, tt.path, nil, &students)
			require.Equal(t, http.StatusOK, rec.Code)
			ids := make([]string, 0, len(students))
			for _, std := range students {
				ids = append(ids, std.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestStudentAPI_Update(t *testing.T) {
	app, r := setup(t)
	cls1 := testutil.CreateClass(t, r.class, "5ème A")
	cls2 := testutil.CreateClass(t, r.class, "6ème A")
	std := testutil.CreateStudent(t, r.student, cls1.ID, "Mbuyi", "Grace")

	var got student.Student
	rec := do(t, app, http.MethodPut, "/api/eleves/"+std.ID, []byte(`{"classe_id": "`+cls2.ID+`", "date_naissance": "2014-03-12"}`), &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cls2.ID, got.ClassID)
	assert.Equal(t, "Mbuyi", got.LastName)
	require.NotNil(t, got.BirthDate)

	rec = do(t, app, http.MethodPut, "/api/eleves/"+std.ID, []byte(`{"date_naissance": ""}`), &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got.BirthDate, "an empty date clears the birth date")

	runHTTPTests(t, app, []httpTest{
		{
			name:     "unknown class",
			method:   http.MethodPut,
			path:     "/api/eleves/" + std.ID,
			body:     []byte(`{"classe_id": "unknown"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Classe non trouvée"}`),
		},
		{
			name:     "unknown student",
			method:   http.MethodPut,
			path:     "/api/eleves/unknown",
			body:     []byte(`{"nom": "Kasongo"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Élève non trouvé"}`),
		},
	})
}

func TestStudentAPI_Delete(t *testing.T) {
	app, r := setup(t)
	cls := testutil.CreateClass(t, r.class, "5ème A")
	std := testutil.CreateStudent(t, r.student, cls.ID, "Mbuyi", "Grace")
	comp := testutil.CreateComposition(t, r.composition, cls.ID, 1)
	sc := testutil.CreateScore(t, r.score, comp.ID, std.ID, scoresFor(120))

	runHTTPTests(t, app, []httpTest{
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/api/eleves/" + std.ID,
			wantCode: http.StatusOK,
			wantData: []byte(`{"message": "Élève supprimé avec succès"}`),
		},
		{
			name:     "scores cascade",
			method:   http.MethodGet,
			path:     "/api/notes/" + sc.ID,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"error": "Note non trouvée"}`),
		},
		{
			name:     "class kept",
			method:   http.MethodGet,
			path:     "/api/eleves?classe_id=" + cls.ID,
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
	})
}
