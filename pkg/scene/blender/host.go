package blender

import (
	"github.com/Faultbox/meshforge/pkg/scene"
)

var _ scene.Host = (*Session)(nil)

// ImportCollada implements scene.Host.
func (s *Session) ImportCollada(path string) error {
	_, err := s.call(request{Op: opImportCollada, Path: path})
	return err
}

// ImportOBJ implements scene.Host.
func (s *Session) ImportOBJ(path string) error {
	_, err := s.call(request{Op: opImportOBJ, Path: path})
	return err
}

// ExportSTL implements scene.Host.
func (s *Session) ExportSTL(path string, selectionOnly bool) error {
	_, err := s.call(request{Op: opExportSTL, Path: path, SelectionOnly: selectionOnly})
	return err
}

// Objects implements scene.Host.
func (s *Session) Objects() ([]string, error) {
	resp, err := s.call(request{Op: opObjects})
	return resp.Names, err
}

// Select implements scene.Host.
func (s *Session) Select(name string, selected bool) error {
	_, err := s.call(request{Op: opSelect, Name: name, Selected: selected})
	return err
}

// DeselectAll implements scene.Host.
func (s *Session) DeselectAll() error {
	_, err := s.call(request{Op: opDeselectAll})
	return err
}

// SetRotation implements scene.Host.
func (s *Session) SetRotation(name string, mode scene.RotationMode, rot scene.Euler) error {
	r := [3]float64(rot)
	_, err := s.call(request{Op: opSetRotation, Name: name, Mode: string(mode), Rotation: &r})
	return err
}

// List implements scene.Host.
func (s *Session) List(c scene.Category) ([]string, error) {
	resp, err := s.call(request{Op: opList, Category: string(c)})
	return resp.Names, err
}

// Remove implements scene.Host.
func (s *Session) Remove(c scene.Category, name string) error {
	_, err := s.call(request{Op: opRemove, Category: string(c), Name: name})
	return err
}
