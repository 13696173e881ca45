// tricalc is a CLI utility for triangular chunk lattice conversions.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Faultbox/tristream/internal/terrain"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	err := run(os.Args[1], os.Args[2:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "anchor":
		return cmdAnchor(args, out)
	case "locate":
		return cmdLocate(args, out)
	case "radius":
		return cmdRadius(args, out)
	case "neighbors":
		return cmdNeighbors(args, out)
	case "mesh":
		return cmdMesh(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `tricalc - triangular chunk lattice utility

Usage:
  tricalc <command> [options] <args>

Commands:
  anchor [-mode m] <a> <b> <c>   World point of a chunk (origin, mesh_center, cell_center)
  locate <x> <z>                 Chunk containing a world position
  radius <x> <z> <r>             Chunks within r world units of (x, z)
  neighbors <a> <b> <c>          Edge neighbours of a chunk
  mesh [-seed n] <a> <b> <c>     Generate one chunk and print mesh statistics

Every command accepts -json for machine-readable output. Use -- before a
leading negative argument.

Examples:
  tricalc anchor 0 0 1
  tricalc locate 12.5 -3
  tricalc radius -json 0 0 20
  tricalc mesh -seed 42 -- -1 1 0`)
}

func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "Print JSON")
	return fs, asJSON
}

func cmdAnchor(args []string, out io.Writer) error {
	fs, asJSON := newFlagSet("anchor")
	mode := fs.String("mode", "origin", "Anchor mode: origin, mesh_center or cell_center")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: tricalc anchor [-mode m] <a> <b> <c>: %v", errUsage, err)
	}

	tc, err := parseTriCoord(fs.Args())
	if err != nil {
		return err
	}
	m, err := parseMode(*mode)
	if err != nil {
		return err
	}

	p := tricoord.ChunkToWorld(tc, m)
	h, alt := tricoord.TriCoordToHalfsideAltitude(tc)
	if *asJSON {
		return writeJSON(out, map[string]any{
			"coord": tc, "mode": m.String(), "anchor": p, "halfsides": h, "altitudes": alt, "odd": tc.IsOdd(),
		})
	}
	fmt.Fprintf(out, "Chunk:     %v (%s)\n", tc, orientation(tc))
	fmt.Fprintf(out, "Steps:     halfsides=%d altitudes=%d\n", h, alt)
	fmt.Fprintf(out, "Anchor:    x=%.4f z=%.4f (%s)\n", p.X, p.Z, m)
	return nil
}

func cmdLocate(args []string, out io.Writer) error {
	fs, asJSON := newFlagSet("locate")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return fmt.Errorf("%w: tricalc locate <x> <z>", errUsage)
	}
	p, err := parsePoint(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}

	tc := tricoord.WorldToTriCoord(p)
	h, alt := tricoord.TriCoordToHalfsideAltitude(tc)
	if *asJSON {
		return writeJSON(out, map[string]any{"position": p, "coord": tc, "halfsides": h, "altitudes": alt})
	}
	fmt.Fprintf(out, "Position:  x=%.4f z=%.4f\n", p.X, p.Z)
	fmt.Fprintf(out, "Chunk:     %v (%s)\n", tc, orientation(tc))
	fmt.Fprintf(out, "Steps:     halfsides=%d altitudes=%d\n", h, alt)
	return nil
}

func cmdRadius(args []string, out io.Writer) error {
	fs, asJSON := newFlagSet("radius")
	if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
		return fmt.Errorf("%w: tricalc radius <x> <z> <r>", errUsage)
	}
	p, err := parsePoint(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	r, err := strconv.ParseFloat(fs.Arg(2), 32)
	if err != nil {
		return fmt.Errorf("invalid radius %q: %w", fs.Arg(2), err)
	}

	center := tricoord.Coord[float32]{X: float32(p.X), Z: float32(p.Z)}
	coords := tricoord.WorldRadiusToChunks(center, float32(r))
	if *asJSON {
		return writeJSON(out, map[string]any{"center": center, "radius": r, "chunks": coords})
	}
	for _, tc := range coords {
		a := tricoord.ChunkToWorld(tc, tricoord.AnchorOrigin)
		fmt.Fprintf(out, "%-16v x=%9.3f z=%9.3f\n", tc, a.X, a.Z)
	}
	fmt.Fprintf(out, "(%d chunks)\n", len(coords))
	return nil
}

func cmdNeighbors(args []string, out io.Writer) error {
	fs, asJSON := newFlagSet("neighbors")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: tricalc neighbors <a> <b> <c>", errUsage)
	}
	tc, err := parseTriCoord(fs.Args())
	if err != nil {
		return err
	}

	n := tc.Neighbors()
	if *asJSON {
		return writeJSON(out, map[string]any{"coord": tc, "neighbors": n})
	}
	for _, nb := range n {
		fmt.Fprintf(out, "%v (%s)\n", nb, orientation(nb))
	}
	return nil
}

func cmdMesh(args []string, out io.Writer) error {
	fs, asJSON := newFlagSet("mesh")
	seed := fs.Int64("seed", 0, "Noise seed")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: tricalc mesh [-seed n] <a> <b> <c>", errUsage)
	}
	tc, err := parseTriCoord(fs.Args())
	if err != nil {
		return err
	}

	noise := terrain.DefaultNoiseConfig()
	noise.Seed = *seed
	chunk, err := terrain.NewGenerator(noise, terrain.DefaultHeightRange()).Generate(tc)
	if err != nil {
		return err
	}

	m := chunk.Mesh
	if *asJSON {
		return writeJSON(out, map[string]any{
			"coord":     tc,
			"anchor":    chunk.Anchor,
			"vertices":  m.VertexCount(),
			"indices":   m.IndexCount(),
			"triangles": m.TriangleCount(),
			"corners":   m.UniquePositions(),
			"bounds":    m.Bounds,
		})
	}
	fmt.Fprintf(out, "Chunk:     %v (%s)\n", tc, orientation(tc))
	fmt.Fprintf(out, "Anchor:    x=%.4f z=%.4f\n", chunk.Anchor.X, chunk.Anchor.Z)
	fmt.Fprintf(out, "Vertices:  %d\n", m.VertexCount())
	fmt.Fprintf(out, "Indices:   %d\n", m.IndexCount())
	fmt.Fprintf(out, "Triangles: %d\n", m.TriangleCount())
	fmt.Fprintf(out, "Corners:   %d distinct of %d lattice points\n", m.UniquePositions(), tricoord.LatticePointsPerChunk())
	fmt.Fprintf(out, "Height:    %.3f .. %.3f\n", m.Bounds.Min.Y(), m.Bounds.Max.Y())
	return nil
}

func parseTriCoord(args []string) (tricoord.TriCoord, error) {
	if len(args) != 3 {
		return tricoord.TriCoord{}, fmt.Errorf("%w: expected <a> <b> <c>, got %d arguments", errUsage, len(args))
	}
	var v [3]int32
	for i, s := range args {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return tricoord.TriCoord{}, fmt.Errorf("invalid component %q: %w", s, err)
		}
		v[i] = int32(n)
	}
	tc := tricoord.New(v[0], v[1], v[2])
	if !tc.Valid() {
		return tc, fmt.Errorf("%v is not a lattice address: components must sum to 0 or 1", tc)
	}
	return tc, nil
}

func parsePoint(xs, zs string) (tricoord.Coord[float64], error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return tricoord.Coord[float64]{}, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	z, err := strconv.ParseFloat(zs, 64)
	if err != nil {
		return tricoord.Coord[float64]{}, fmt.Errorf("invalid z %q: %w", zs, err)
	}
	return tricoord.Coord[float64]{X: x, Z: z}, nil
}

func parseMode(s string) (tricoord.AnchorMode, error) {
	for _, m := range []tricoord.AnchorMode{tricoord.AnchorOrigin, tricoord.AnchorMeshCenter, tricoord.AnchorCellCenter} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown anchor mode %q", errUsage, s)
}

func orientation(tc tricoord.TriCoord) string {
	if tc.IsOdd() {
		return "odd"
	}
	return "even"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
