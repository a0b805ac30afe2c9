// Package config loads the slotfinder YAML file: runtime scheduling settings,
// provider credentials locations and the participant directory that maps each
// participant to a calendar backend.
package config
