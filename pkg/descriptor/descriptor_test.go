package descriptor

import (
	"testing"

	"github.com/nff-go/nff/pkg/nffcore"
)

func TestAttributeValidateLengthRequiresArray(t *testing.T) {
	a := AttributeRecord{Converter: "int", Length: 4, IsArray: false}
	if err := a.Validate(); !nffcore.Is(err, nffcore.ParameterSignatureMalformed) {
		t.Fatalf("length without is_array: got %v, want ParameterSignatureMalformed", err)
	}
}

func TestAttributeValidateStringArrayLengthOK(t *testing.T) {
	a := AttributeRecord{Converter: "string_array", Length: 64, IsArray: false}
	if err := a.Validate(); err != nil {
		t.Fatalf("string_array with length: unexpected error %v", err)
	}
}

func TestAttributeValidateAlignedForbiddenOnPrimitive(t *testing.T) {
	a := AttributeRecord{Converter: "int", Length: -1, Aligned: true}
	if err := a.Validate(); !nffcore.Is(err, nffcore.ParameterSignatureMalformed) {
		t.Fatalf("aligned on primitive: got %v, want ParameterSignatureMalformed", err)
	}
}

func TestAttributeValidateAlignedAllowedOnArray(t *testing.T) {
	a := AttributeRecord{Converter: "int", Aligned: true, IsArray: true, Length: 4}
	if err := a.Validate(); err != nil {
		t.Fatalf("aligned array: unexpected error %v", err)
	}
}

func TestIsPatternDetectsHexTokens(t *testing.T) {
	if !IsPattern("55 8B EC * * 56") {
		t.Error("expected a hex-token identifier to be recognized as a pattern")
	}
	if IsPattern("_ZN11CBasePlayer4KillEv") {
		t.Error("expected a mangled symbol name not to be recognized as a pattern")
	}
}

func TestParseOffsetHexAndDecimal(t *testing.T) {
	v, err := ParseOffset("0x48")
	if err != nil || v != 0x48 {
		t.Fatalf("ParseOffset(0x48) = %d, %v; want 72, nil", v, err)
	}
	v, err = ParseOffset("17")
	if err != nil || v != 17 {
		t.Fatalf("ParseOffset(17) = %d, %v; want 17, nil", v, err)
	}
}

func TestOverrideResolvesOSSpecificKey(t *testing.T) {
	values := map[string]string{
		"identifier":      "base",
		"identifier_nt":   "windows-variant",
		"identifier_posix": "posix-variant",
	}
	if v, ok := Override(values, "identifier", true); !ok || v != "windows-variant" {
		t.Fatalf("Override(windows=true) = %q, %v; want windows-variant, true", v, ok)
	}
	if v, ok := Override(values, "identifier", false); !ok || v != "posix-variant" {
		t.Fatalf("Override(windows=false) = %q, %v; want posix-variant, true", v, ok)
	}
	if v, ok := Override(map[string]string{"identifier": "base"}, "identifier", true); !ok || v != "base" {
		t.Fatalf("Override falling back to bare key = %q, %v; want base, true", v, ok)
	}
	if _, ok := Override(map[string]string{}, "identifier", true); ok {
		t.Fatal("Override on an absent key should report ok=false")
	}
}
