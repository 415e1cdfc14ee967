// Package catalog is the species catalog (C1): a process-wide, immutable,
// ordered list of species records loaded once from a delimiter-separated
// text file. Species are addressed by their index into the catalog (the
// species identifier referenced everywhere else in the simulator).
//
// Row validation is grounded on original_source/src/creature_parser.cpp:
// the same attribute vocabulary (Wasserbewohner/Landbewohner, Pflanze/
// Tier, Pflanzenfresser/Fleischfresser), the same mutual-exclusivity and
// extra-attribute rejection rules, case-folded the same way.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Ecology is the six-way classification derived from a species' medium and
// diet. Plants have no diet attribute; animals must declare exactly one.
type Ecology uint8

const (
	AquaticPlant Ecology = iota
	TerrestrialPlant
	AquaticHerbivore
	TerrestrialHerbivore
	AquaticCarnivore
	TerrestrialCarnivore
)

func (e Ecology) String() string {
	switch e {
	case AquaticPlant:
		return "AquaticPlant"
	case TerrestrialPlant:
		return "TerrestrialPlant"
	case AquaticHerbivore:
		return "AquaticHerbivore"
	case TerrestrialHerbivore:
		return "TerrestrialHerbivore"
	case AquaticCarnivore:
		return "AquaticCarnivore"
	case TerrestrialCarnivore:
		return "TerrestrialCarnivore"
	default:
		return "invalid"
	}
}

// IsPlant reports whether the ecology is one of the two plant ecologies.
func (e Ecology) IsPlant() bool {
	return e == AquaticPlant || e == TerrestrialPlant
}

// IsHerbivore reports whether the ecology eats plants.
func (e Ecology) IsHerbivore() bool {
	return e == AquaticHerbivore || e == TerrestrialHerbivore
}

// IsCarnivore reports whether the ecology eats herbivores.
func (e Ecology) IsCarnivore() bool {
	return e == AquaticCarnivore || e == TerrestrialCarnivore
}

// IsAquatic reports whether the ecology requires a water tile.
func (e Ecology) IsAquatic() bool {
	return e == AquaticPlant || e == AquaticHerbivore || e == AquaticCarnivore
}

// Species is an immutable catalog record.
type Species struct {
	Name        string
	Strength    int
	Speed       int
	MaxLifetime int16
	Ecology     Ecology
	SpriteKey   string
}

// ProcreationInterval is the plant/animal-specific reproduction cadence
// derived from MaxLifetime: plants every MaxLifetime/100 ticks,
// animals every MaxLifetime/50.
func (s Species) ProcreationInterval() int {
	if s.Ecology.IsPlant() {
		return int(s.MaxLifetime) / 100
	}
	return int(s.MaxLifetime) / 50
}

// WalkSpeed is the tiles-per-tick rate used by the Roam macro-state.
func (s Species) WalkSpeed() int {
	return s.Speed / 20
}

// RunSpeed is the tiles-per-tick rate used by the Hunt macro-state.
func (s Species) RunSpeed() int {
	return s.Speed / 10
}

// RowError describes a single rejected line of the species table.
type RowError struct {
	Line   int
	Raw    string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Raw)
}

// Catalog is the ordered, immutable set of well-formed species records.
// The zero value is not usable; construct with Load.
type Catalog struct {
	species     []Species
	indexByName map[string]uint8
	fingerprint uint64
}

var nameFormat = regexp.MustCompile(`^[\p{L} ]+$`)

// Load reads a species table from path. The returned error is non-nil only
// for fatal configuration failures (the file cannot be opened, or not a
// single row in it is well-formed); individual malformed rows are instead
// reported in the returned []RowError slice, and are simply excluded from
// the catalog.
func Load(path string) (*Catalog, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: opening species table: %w", err)
	}
	defer f.Close()

	var rowErrors []RowError
	var species []Species
	var rawRows [][]byte

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		sp, reason := parseRow(raw)
		if reason != "" {
			rowErrors = append(rowErrors, RowError{Line: line, Raw: raw, Reason: reason})
			continue
		}
		species = append(species, sp)
		rawRows = append(rawRows, []byte(raw))
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, rowErrors, fmt.Errorf("catalog: reading species table: %w", err)
	}
	if len(species) == 0 {
		return nil, rowErrors, fmt.Errorf("catalog: species table %s contains no well-formed rows", path)
	}

	indexByName := make(map[string]uint8, len(species))
	digest := xxhash.New()
	for i, sp := range species {
		indexByName[sp.Name] = uint8(i)
		digest.Write(rawRows[i])
	}

	return &Catalog{species: species, indexByName: indexByName, fingerprint: digest.Sum64()}, rowErrors, nil
}

// parseRow validates and converts a single species-table line. It returns
// a non-empty reason string on any validation failure.
func parseRow(raw string) (Species, string) {
	fields := strings.Split(raw, ",")
	if len(fields) != 6 {
		return Species{}, fmt.Sprintf("expected 6 comma-separated fields, got %d", len(fields))
	}
	name := strings.TrimSpace(fields[0])
	if !nameFormat.MatchString(name) {
		return Species{}, "name must match [\\p{L} ]+"
	}
	strength, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Species{}, "strength is not an integer"
	}
	speed, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Species{}, "speed is not an integer"
	}
	lifetime64, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 16)
	if err != nil {
		return Species{}, "max_lifetime is not a valid int16"
	}

	ecology, reason := parseAttributes(fields[4])
	if reason != "" {
		return Species{}, reason
	}

	spriteKey := strings.TrimSpace(fields[5])
	if reason := validateSpriteKey(spriteKey); reason != "" {
		return Species{}, reason
	}

	return Species{
		Name:        name,
		Strength:    strength,
		Speed:       speed,
		MaxLifetime: int16(lifetime64),
		Ecology:     ecology,
		SpriteKey:   spriteKey,
	}, ""
}

// parseAttributes applies the exclusivity rules of original_source's
// creature_parser.cpp to the space-separated attribute field: exactly one
// of Wasserbewohner/Landbewohner, exactly one of Pflanze/Tier, and for
// Tier exactly one of Pflanzenfresser/Fleischfresser, with no other
// tokens tolerated.
func parseAttributes(field string) (Ecology, string) {
	tokens := strings.Fields(field)
	if len(tokens) == 0 {
		return 0, "attributes field is empty"
	}

	var aquatic, terrestrial, plant, animal, herbivore, carnivore bool
	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "wasserbewohner":
			aquatic = true
		case "landbewohner":
			terrestrial = true
		case "pflanze":
			plant = true
		case "tier":
			animal = true
		case "pflanzenfresser":
			herbivore = true
		case "fleischfresser":
			carnivore = true
		default:
			return 0, fmt.Sprintf("unknown attribute %q", tok)
		}
	}

	if aquatic == terrestrial {
		return 0, "exactly one of Wasserbewohner/Landbewohner is required"
	}
	if plant == animal {
		return 0, "exactly one of Pflanze/Tier is required"
	}
	if plant {
		if herbivore || carnivore {
			return 0, "a plant may not carry a diet attribute"
		}
		if aquatic {
			return AquaticPlant, ""
		}
		return TerrestrialPlant, ""
	}

	if herbivore == carnivore {
		return 0, "an animal requires exactly one of Pflanzenfresser/Fleischfresser"
	}
	switch {
	case aquatic && herbivore:
		return AquaticHerbivore, ""
	case aquatic && carnivore:
		return AquaticCarnivore, ""
	case terrestrial && herbivore:
		return TerrestrialHerbivore, ""
	default:
		return TerrestrialCarnivore, ""
	}
}

// validateSpriteKey enforces the POSIX-portable-filename-segments rule:
// slash-joined segments each drawn from the portable filename character
// set.
func validateSpriteKey(key string) string {
	if key == "" {
		return "sprite_key is empty"
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" {
			return "sprite_key has an empty path segment"
		}
		for _, r := range seg {
			portable := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-'
			if !portable {
				return fmt.Sprintf("sprite_key segment %q is not POSIX-portable", seg)
			}
		}
	}
	return ""
}

// Len returns the number of species in the catalog.
func (c *Catalog) Len() int {
	return len(c.species)
}

// Get returns the species at idx. It panics if idx is out of range: a
// well-behaved caller only ever holds indices handed out by this catalog.
func (c *Catalog) Get(idx uint8) Species {
	if int(idx) >= len(c.species) {
		panic(fmt.Sprintf("catalog: species index %d out of range (len %d)", idx, len(c.species)))
	}
	return c.species[idx]
}

// IndexOf looks up a species by name.
func (c *Catalog) IndexOf(name string) (uint8, bool) {
	idx, ok := c.indexByName[name]
	return idx, ok
}

// Fingerprint is an xxhash digest of the raw bytes of every row that
// survived into the catalog. It has no effect on simulation semantics;
// it exists only so a log line can show whether two processes loaded the
// same species table.
func (c *Catalog) Fingerprint() uint64 {
	return c.fingerprint
}
