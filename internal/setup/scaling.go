// Package setup provides the interactive configuration flow for the
// scaling policy.
package setup

import (
	"fmt"
	"strconv"

	"github.com/bnema/waybridge/internal/config"
	"github.com/charmbracelet/huh"
)

// ScalingSetup walks through scaling policy selection and writes the
// result to the config file.
type ScalingSetup struct {
	scaling config.ScalingConfig
}

// NewScalingSetup seeds the form with the current configuration.
func NewScalingSetup() *ScalingSetup {
	return &ScalingSetup{scaling: config.Get().Scaling}
}

// Run drives the forms. It reports whether the configuration was saved;
// declining the final confirm leaves the config file untouched.
func (s *ScalingSetup) Run() (bool, error) {
	mode := s.scaling.Mode
	if mode == "" {
		mode = "direct"
	}
	scale := formatFactor(s.scaling.Scale)
	scaleX := formatFactor(s.scaling.ScaleX)
	scaleY := formatFactor(s.scaling.ScaleY)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Scaling policy").
				Description("Direct keeps per-axis factors and negotiates per-window overrides.\nLegacy applies one truncating factor everywhere.").
				Options(
					huh.NewOption("Direct (per-axis, negotiated overrides)", "direct"),
					huh.NewOption("Legacy (uniform, truncating)", "legacy"),
				).
				Value(&mode),
			huh.NewInput().
				Title("Scale factor").
				Description("Guest pixels per host logical unit, e.g. 2.0 for a HiDPI host").
				Value(&scale).
				Validate(validateFactor),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}

	if mode == "direct" {
		axisForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Horizontal scale factor").
					Description("Keep the uniform factor unless the guest needs anisotropic scaling").
					Value(&scaleX).
					Validate(validateFactor),
				huh.NewInput().
					Title("Vertical scale factor").
					Value(&scaleY).
					Validate(validateFactor),
			),
		)
		if err := axisForm.Run(); err != nil {
			return false, err
		}
	}

	summary := fmt.Sprintf("mode=%s scale=%s", mode, scale)
	if mode == "direct" {
		summary = fmt.Sprintf("%s x=%s y=%s", summary, scaleX, scaleY)
	}

	var confirm bool
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save scaling configuration?").
				Description(summary).
				Value(&confirm),
		),
	)
	if err := confirmForm.Run(); err != nil {
		return false, err
	}
	if !confirm {
		return false, nil
	}

	s.scaling.Mode = mode
	s.scaling.Scale = parseFactor(scale)
	if mode == "direct" {
		s.scaling.ScaleX = parseFactor(scaleX)
		s.scaling.ScaleY = parseFactor(scaleY)
	}

	if err := config.UpdateScaling(s.scaling); err != nil {
		return false, err
	}
	return true, nil
}

func validateFactor(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v <= 0 {
		return fmt.Errorf("factor must be positive")
	}
	return nil
}

// formatFactor renders a factor for editing, mapping unset values to 1.0.
func formatFactor(v float64) string {
	if v <= 0 {
		return "1.0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFactor(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
