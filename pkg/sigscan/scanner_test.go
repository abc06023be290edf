package sigscan

import (
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/nff-go/nff/pkg/nffcore"
	"github.com/nff-go/nff/pkg/ptr"
	"gopkg.in/yaml.v3"
)

type patternTestSpec struct {
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Image   []string `yaml:"image"`
	Found   bool     `yaml:"found"`
	Offset  int      `yaml:"offset"`
}

type patternTestFile struct {
	Tests []patternTestSpec `yaml:"tests"`
}

func TestFind(t *testing.T) {
	data, err := os.ReadFile("testdata/patterns.yaml")
	if err != nil {
		t.Fatalf("failed to read patterns.yaml: %v", err)
	}
	var file patternTestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		t.Fatalf("failed to parse patterns.yaml: %v", err)
	}

	for _, tt := range file.Tests {
		t.Run(tt.Name, func(t *testing.T) {
			pat, err := ParsePattern(tt.Pattern)
			if err != nil {
				t.Fatalf("ParsePattern: %v", err)
			}
			image := make([]byte, len(tt.Image))
			for i, tok := range tt.Image {
				b, _ := hex.DecodeString(tok)
				image[i] = b[0]
			}

			got, err := Find(image, 0x1000, pat)
			if !tt.Found {
				if err == nil {
					t.Fatalf("Find() = %#x, want SignatureNotFound", got)
				}
				if !nffcore.Is(err, nffcore.SignatureNotFound) {
					t.Fatalf("Find() error = %v, want SignatureNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find() unexpected error: %v", err)
			}
			want := ptr.Address(0x1000 + tt.Offset)
			if got != want {
				t.Errorf("Find() = %#x, want %#x", got, want)
			}
		})
	}
}

func TestParsePatternEmptyIsMalformed(t *testing.T) {
	if _, err := ParsePattern("   "); !nffcore.Is(err, nffcore.SignatureMalformed) {
		t.Fatalf("expected SignatureMalformed, got %v", err)
	}
}

func TestLooksLikePattern(t *testing.T) {
	if !LooksLikePattern("55 8B EC * * 56") {
		t.Error("should detect a byte-signature identifier")
	}
	if LooksLikePattern("_ZN11CBasePlayer4KillEv") {
		t.Error("should not classify a mangled symbol as a pattern")
	}
	if LooksLikePattern(strings.TrimSpace("add")) {
		t.Error("single token should not be a pattern")
	}
}
