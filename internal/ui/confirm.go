package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// DeletePrompt builds the question asked before deleting a record.
func DeletePrompt(kind, label string) string {
	return fmt.Sprintf("Delete %s %q?", kind, label)
}

// FormTheme tints huh's base theme with the palette.
func FormTheme(t Theme) *huh.Theme {
	ht := huh.ThemeBase()
	ht.Focused.Title = ht.Focused.Title.Foreground(t.Text).Bold(true)
	ht.Focused.Description = ht.Focused.Description.Foreground(t.Subtle)
	ht.Focused.ErrorMessage = ht.Focused.ErrorMessage.Foreground(t.Danger)
	ht.Focused.FocusedButton = ht.Focused.FocusedButton.Background(t.Danger).Foreground(t.Background)
	return ht
}

func confirmForm(prompt string, theme Theme, answer *bool) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Description("This cannot be undone.").
			Affirmative("Delete").
			Negative("Keep").
			Value(answer),
	)).WithTheme(FormTheme(theme)).WithShowHelp(false)
}

// Confirm asks a yes/no question. The answer defaults to no, and an aborted
// prompt counts as no.
func Confirm(prompt string, theme Theme) (bool, error) {
	var ok bool
	err := confirmForm(prompt, theme, &ok).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
