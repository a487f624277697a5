package normalize

import (
	"strings"
	"testing"
)

// FuzzNormalizer checks the normalizer never panics and always returns
// values from its closed vocabulary.
func FuzzNormalizer(f *testing.F) {
	n := Default()

	f.Add("Manhã")
	f.Add("MANHA  1")
	f.Add("Turno da Tarde")
	f.Add("2º Ano")
	f.Add("1 ano ensino medio")
	f.Add("1EM")
	f.Add("")
	f.Add("\x00\xff")
	f.Add("ºª°")
	f.Add(strings.Repeat("manha ", 200))

	f.Fuzz(func(t *testing.T, input string) {
		text := n.NormalizeText(input)
		if text != strings.TrimSpace(text) {
			t.Errorf("NormalizeText(%q) = %q has surrounding whitespace", input, text)
		}
		if strings.Contains(text, "  ") {
			t.Errorf("NormalizeText(%q) = %q has repeated spaces", input, text)
		}

		if shift, ok := n.NormalizeShift(input); ok {
			if shift != ShiftMorning && shift != ShiftAfternoon {
				t.Errorf("NormalizeShift(%q) = %q outside vocabulary", input, shift)
			}
		}

		if grade, ok := n.NormalizeGrade(input); ok {
			if !strings.Contains(grade, "º ano") {
				t.Errorf("NormalizeGrade(%q) = %q missing canonical suffix", input, grade)
			}
		}
	})
}
