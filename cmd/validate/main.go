package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sunriselabs/voice-adventure/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &WorldValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World file is valid!")
}

type WorldValidator struct {
	errors []string
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	// Validate filename format
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("world file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidWorldFilename(nameWithoutExt) {
		return fmt.Errorf("world filename '%s' must be lowercase snake_case (e.g., forest_quest.json, not forest-quest.json or ForestQuest.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var w world.World
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&w); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateWorld(&w)

	// Sessions look worlds up by filename, so the declared name must agree.
	// The experimental 'x.' prefix is not part of the name.
	if w.Name != "" && w.Name != strings.TrimPrefix(nameWithoutExt, "x.") {
		v.addError(fmt.Sprintf("world name '%s' does not match filename '%s'", w.Name, baseName))
	}

	// Graph construction checks closure: entry exists, destinations exist,
	// keys are unique, effect types are known.
	if _, err := world.NewGraph(&w); err != nil {
		v.addError(err.Error())
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *WorldValidator) validateWorld(w *world.World) {
	v.validateIDFormat("world name", w.Name)
	v.validateIDFormat("entry scene", w.Entry)

	if w.Description == "" {
		v.addError("world description is empty")
	}

	for _, scene := range w.Scenes {
		v.validateIDFormat("scene ID", scene.ID)
		v.validateScene(&scene)
	}
}

func (v *WorldValidator) validateScene(scene *world.Scene) {
	if scene.Description == "" {
		v.addError(fmt.Sprintf("scene '%s' has an empty description", scene.ID))
	}

	for _, choice := range scene.Choices {
		v.validateIDFormat(fmt.Sprintf("choice key in scene %s", scene.ID), choice.Key)
		v.validateIDFormat(fmt.Sprintf("choice destination in scene %s", scene.ID), choice.Scene)
		if choice.Description == "" {
			v.addError(fmt.Sprintf("choice '%s' in scene '%s' has an empty description", choice.Key, scene.ID))
		}
	}
}

func (v *WorldValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidWorldFilename(name string) bool {
	// Allow 'x.' prefix for experimental worlds
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
