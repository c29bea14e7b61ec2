package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
)

// ErrCleanupAborted is returned when the user cancels the cleanup flow.
var ErrCleanupAborted = errors.New("record cleanup aborted by user")

// CleanupForm runs an interactive wizard over a set of duplicate records: it
// presents the candidates, asks which one to keep, and confirms before
// returning the records to delete.
func CleanupForm(duplicates []domain.Record) ([]domain.Record, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	opts := make([]huh.Option[string], 0, len(duplicates))
	for _, r := range duplicates {
		label := fmt.Sprintf("%s (TTL %d, ID %s)", r.Content, r.TTL, r.ID)
		opts = append(opts, huh.NewOption(label, r.ID))
	}

	var keepID string
	selectField := huh.NewSelect[string]().
		Title("Multiple records found, select the one to KEEP").
		Options(opts...).
		Value(&keepID)

	summaryNote := huh.NewNote().
		Title("Records to delete").
		DescriptionFunc(func() string {
			return buildCleanupSummary(duplicates, keepID)
		}, &keepID)

	confirmed := false
	confirmField := huh.NewConfirm().
		Title("Delete all other records?").
		Affirmative("Delete").
		Negative("Cancel").
		Value(&confirmed)

	form := huh.NewForm(
		huh.NewGroup(selectField),
		huh.NewGroup(summaryNote, confirmField),
	).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCleanupAborted
		}
		return nil, err
	}
	if !confirmed {
		return nil, ErrCleanupAborted
	}

	deletions := make([]domain.Record, 0, len(duplicates)-1)
	for _, r := range duplicates {
		if r.ID != keepID {
			deletions = append(deletions, r)
		}
	}
	return deletions, nil
}

func buildCleanupSummary(duplicates []domain.Record, keepID string) string {
	out := ""
	for _, r := range duplicates {
		if r.ID == keepID {
			continue
		}
		out += fmt.Sprintf("  - %s (ID %s)\n", r.Content, r.ID)
	}
	if out == "" {
		return "Nothing selected yet."
	}
	return out
}
