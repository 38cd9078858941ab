package models

import (
	"strings"
	"testing"
)

func validMode() *Mode {
	return &Mode{
		Slug:           "writer",
		Name:           "Writer",
		RoleDefinition: "You write.",
		Groups: []GroupEntry{
			{Group: GroupRead},
			{Group: GroupEdit, Options: &GroupOptions{FileRegex: `\.md$`}},
		},
	}
}

func TestModeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mut     func(*Mode)
		wantErr string
	}{
		{"valid", func(m *Mode) {}, ""},
		{"uppercase slug", func(m *Mode) { m.Slug = "Writer" }, "invalid slug"},
		{"empty slug", func(m *Mode) { m.Slug = "" }, "invalid slug"},
		{"slug with space", func(m *Mode) { m.Slug = "my mode" }, "invalid slug"},
		{"underscore and dash ok", func(m *Mode) { m.Slug = "my_mode-2" }, ""},
		{"missing name", func(m *Mode) { m.Name = "" }, "name is required"},
		{"missing role", func(m *Mode) { m.RoleDefinition = "" }, "roleDefinition is required"},
		{
			"unknown group",
			func(m *Mode) { m.Groups = append(m.Groups, GroupEntry{Group: "network"}) },
			"invalid tool group",
		},
		{
			"duplicate group",
			func(m *Mode) { m.Groups = append(m.Groups, GroupEntry{Group: GroupRead}) },
			"duplicate group",
		},
		{
			"broken regex",
			func(m *Mode) { m.Groups[1].Options.FileRegex = "[unclosed" },
			"invalid file regex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := validMode()
			tt.mut(mode)
			err := mode.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestGroupOptionsMatchesFile(t *testing.T) {
	opts := &GroupOptions{FileRegex: `\.py$`}
	if err := opts.Compile(); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if !opts.MatchesFile("src/main.py") {
		t.Error("src/main.py should match \\.py$")
	}
	if opts.MatchesFile("main.pyc") {
		t.Error("main.pyc should not match \\.py$")
	}

	var unrestricted *GroupOptions
	if !unrestricted.MatchesFile("anything") {
		t.Error("nil options should match everything")
	}
}

func TestCanEditFile(t *testing.T) {
	mode := validMode()
	if !mode.CanEditFile("notes.md") {
		t.Error("notes.md should be editable")
	}
	if mode.CanEditFile("main.go") {
		t.Error("main.go should not be editable")
	}

	noEdit := &Mode{Slug: "ro", Name: "RO", RoleDefinition: "r",
		Groups: []GroupEntry{{Group: GroupRead}}}
	if noEdit.CanEditFile("notes.md") {
		t.Error("mode without edit group should not edit anything")
	}

	freeEdit := &Mode{Slug: "rw", Name: "RW", RoleDefinition: "r",
		Groups: []GroupEntry{{Group: GroupEdit}}}
	if !freeEdit.CanEditFile("anything.bin") {
		t.Error("unrestricted edit group should edit everything")
	}
}
