package iniconfig

import (
	"strings"
	"testing"
)

const sample = `
size = 72
[attributes]
    [[health]]
    converter = int
    identifier = 0x48
[functions]
    [[Kill]]
    binary = server
    identifier = _ZN11CBasePlayer4KillEv
    parameters = )v
    convention = THISCALL
[virtual_functions]
    [[Spawn]]
    identifier = 17
    parameters = )v
`

func TestParseSample(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Size != 72 {
		t.Errorf("Size = %d, want 72", doc.Size)
	}
	if _, ok := doc.Attributes["health"]; !ok {
		t.Error("missing [[health]] attribute subsection")
	}
	if _, ok := doc.Functions["Kill"]; !ok {
		t.Error("missing [[Kill]] function subsection")
	}
	if _, ok := doc.Virtuals["Spawn"]; !ok {
		t.Error("missing [[Spawn]] virtual subsection")
	}
}

func TestBuildFunctionsDefaultsAndOverrides(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	funcs, err := BuildFunctions(doc, false)
	if err != nil {
		t.Fatalf("BuildFunctions: %v", err)
	}
	kill, ok := funcs["Kill"]
	if !ok {
		t.Fatal("missing Kill function record")
	}
	if kill.Identifier != "_ZN11CBasePlayer4KillEv" {
		t.Errorf("Identifier = %q", kill.Identifier)
	}
	if kill.Parameters.String() != ")v" {
		t.Errorf("Parameters = %q, want )v", kill.Parameters.String())
	}
	if !kill.SrvCheck {
		t.Error("SrvCheck should default to true")
	}
	if kill.Convention.String() != "thiscall" {
		t.Errorf("Convention = %v, want thiscall (explicit key overrides the cdecl default)", kill.Convention)
	}
}

func TestBuildVirtualsSlotParsing(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	virtuals, err := BuildVirtuals(doc, false)
	if err != nil {
		t.Fatalf("BuildVirtuals: %v", err)
	}
	spawn, ok := virtuals["Spawn"]
	if !ok {
		t.Fatal("missing Spawn virtual record")
	}
	if spawn.Slot != 17 {
		t.Errorf("Slot = %d, want 17", spawn.Slot)
	}
}

func TestBuildAttributesHexIdentifier(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	attrs, err := BuildAttributes(doc, false)
	if err != nil {
		t.Fatalf("BuildAttributes: %v", err)
	}
	health, ok := attrs["health"]
	if !ok {
		t.Fatal("missing health attribute record")
	}
	if health.Offset != 0x48 {
		t.Errorf("Offset = %#x, want 0x48", health.Offset)
	}
}

func TestParseRejectsKeyOutsideSubsection(t *testing.T) {
	bad := "[functions]\nbinary = server\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for a key=value line outside any [[subsection]]")
	}
}
