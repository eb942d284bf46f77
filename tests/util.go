// Package testutil creates fixtures straight through the repositories.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/carnet/core/class"
	"github.com/trezcool/carnet/core/composition"
	"github.com/trezcool/carnet/core/grading"
	"github.com/trezcool/carnet/core/score"
	"github.com/trezcool/carnet/core/student"
)

func CreateClass(t *testing.T, repo class.Repository, level string) class.Class {
	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), class.Class{
		ID:         uuid.New().String(),
		School:     "EP Les Flamboyants",
		Level:      level,
		SchoolYear: "2025-2026",
		Teacher:    "Mme Kabeya",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, repo student.Repository, classID, lastName, firstName string) student.Student {
	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		ID:        uuid.New().String(),
		LastName:  lastName,
		FirstName: firstName,
		ClassID:   classID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateComposition(t *testing.T, repo composition.Repository, classID string, number int) composition.Composition {
	now := time.Now().UTC()
	comp, err := repo.CreateComposition(context.Background(), composition.Composition{
		ID:        uuid.New().String(),
		ClassID:   classID,
		Number:    number,
		Date:      fmt.Sprintf("2025-%02d-15", (number%12)+1),
		Title:     fmt.Sprintf("Composition %d", number),
		Month:     "Octobre",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateComposition() failed: %v", err)
	}
	return comp
}

func CreateScore(t *testing.T, repo score.Repository, compositionID, studentID string, scores grading.Scores) score.Score {
	now := time.Now().UTC()
	sc, err := repo.CreateScore(context.Background(), score.Score{
		ID:            uuid.New().String(),
		CompositionID: compositionID,
		StudentID:     studentID,
		Scores:        scores,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateScore() failed: %v", err)
	}
	return sc
}
