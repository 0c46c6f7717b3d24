package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobrunner/locus/internal/adapters/geojson"
	"github.com/jobrunner/locus/internal/app"
	"github.com/jobrunner/locus/internal/domain"
)

var relateCmd = &cobra.Command{
	Use:   "relate <a.geojson> <b.geojson>",
	Short: "Report whether two GeoJSON geometries intersect",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readGeometry(args[0])
		if err != nil {
			return err
		}
		b, err := readGeometry(args[1])
		if err != nil {
			return err
		}

		rel := domain.Relate(a, b)
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"a":                a.Kind().String(),
			"b":                b.Kind().String(),
			"bounds_intersect": rel.BoundsIntersect,
			"intersects":       rel.Intersects,
		})
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance <lat,lng> <lat,lng>",
	Short: "Compute the distance between two coordinates in meters",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, _ := cmd.Flags().GetString("method")
		formatName, _ := cmd.Flags().GetString("format")

		calc, ok := app.Distances()[method]
		if !ok {
			return fmt.Errorf("unknown method %q (available: %s)", method, keys(app.Distances()))
		}
		formatter, ok := app.Formatters()[formatName]
		if !ok {
			return fmt.Errorf("unknown format %q (available: %s)", formatName, keys(app.Formatters()))
		}

		from, err := domain.ParseCoordinate(args[0])
		if err != nil {
			return err
		}
		to, err := domain.ParseCoordinate(args[1])
		if err != nil {
			return err
		}

		meters, err := calc.Distance(from, to)
		if err != nil {
			return err
		}

		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"from":   from.Format(formatter),
			"to":     to.Format(formatter),
			"method": method,
			"meters": meters,
		})
	},
}

func init() {
	distanceCmd.Flags().String("method", "haversine", "distance method (haversine, vincenty)")
	distanceCmd.Flags().String("format", "decimal", "coordinate format (decimal, dms, geojson)")
}

// readGeometry decodes a GeoJSON geometry from a file, or stdin for "-".
func readGeometry(name string) (domain.Geometry, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	g, err := geojson.DecodeGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if err := domain.ValidateGeometry(g); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return g, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func keys[V any](m map[string]V) string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
