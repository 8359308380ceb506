package validation

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Дом у озера", "dom-u-ozera"},
		{"Lake House", "lake-house"},
		{"Жилой комплекс «Щука»", "zhiloi-kompleks-schuka"},
		{"  Project   2024  ", "project-2024"},
		{"Объём", "obem"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestValidSlug(t *testing.T) {
	valid := []string{"dom-u-ozera", "a", "p2024", "dom-u-ozera-2"}
	for _, s := range valid {
		if !ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "-leading", "trailing-", "double--hyphen", "UPPER", "с-кириллицей", "has space"}
	for _, s := range invalid {
		if ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = true, want false", s)
		}
	}
}
