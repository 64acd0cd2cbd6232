package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"example.com/lifelog/backend/internal/metrics"
)

// LoadTargets читает недельные цели из YAML поверх значений по умолчанию.
// Пустой путь означает значения по умолчанию.
func LoadTargets(path string) (metrics.Targets, error) {
	targets := metrics.DefaultTargets()
	if path == "" {
		return targets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return targets, fmt.Errorf("read targets file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &targets); err != nil {
		return targets, fmt.Errorf("parse targets file %s: %w", path, err)
	}

	if err := validateTargets(targets); err != nil {
		return targets, fmt.Errorf("targets file %s: %w", path, err)
	}

	return targets, nil
}

func validateTargets(t metrics.Targets) error {
	var errs []error
	if t.LearningArtifacts <= 0 {
		errs = append(errs, errors.New("learning_artifacts must be greater than 0"))
	}
	if t.GymSessions <= 0 {
		errs = append(errs, errors.New("gym_sessions must be greater than 0"))
	}
	if t.RelationshipInteractions <= 0 {
		errs = append(errs, errors.New("relationship_interactions must be greater than 0"))
	}
	if t.Calls <= 0 {
		errs = append(errs, errors.New("calls must be greater than 0"))
	}
	return errors.Join(errs...)
}
