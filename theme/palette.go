// Package theme colors the monitor UI from a gradient palette, either
// the built-in one or a GIMP .gpl file supplied through config.
package theme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type RGB [3]uint8

// Palette is an ordered color gradient sampled by normalized position.
type Palette struct {
	Name   string
	Colors []RGB
}

// Default is the built-in gradient: dark violet through magenta into
// warm yellow, dim-to-hot.
func Default() *Palette {
	return &Palette{
		Name: "default",
		Colors: []RGB{
			{40, 24, 56},
			{88, 48, 104},
			{152, 64, 128},
			{216, 96, 120},
			{240, 160, 96},
			{248, 224, 112},
		},
	}
}

// LoadGPL reads a GIMP palette file: a header, then one "R G B name"
// line per color.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		r, err1 := strconv.Atoi(fields[0])
		g, err2 := strconv.Atoi(fields[1])
		b, err3 := strconv.Atoi(fields[2])
		if err1 == nil && err2 == nil && err3 == nil {
			p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found in palette %s", path)
	}
	return p, nil
}

// Lookup interpolates the gradient at a normalized position 0-1.
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 || len(p.Colors) == 1 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)
	c0, c1 := p.Colors[i], p.Colors[i+1]
	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
