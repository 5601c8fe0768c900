package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/reqreport/internal/domain"
)

// releaseOptions labels each release with its state and dates.
func releaseOptions(releases []domain.Release) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(releases))
	for _, r := range releases {
		label := r.Name
		if r.State != "" {
			label += fmt.Sprintf("  (%s)", r.State)
		}
		if !r.StartDate.IsZero() && !r.EndDate.IsZero() {
			label += fmt.Sprintf("  %s → %s", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))
		}
		opts = append(opts, huh.NewOption(label, r.Name))
	}
	return opts
}

func pickReleaseForm(releases []domain.Release) (string, error) {
	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Release").
				Description("Newest first").
				Options(releaseOptions(releases)...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}
