package cmd

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/nightsky-software/stardb-go/internal/catalog"
	"github.com/nightsky-software/stardb-go/internal/octree"
	"github.com/nightsky-software/stardb-go/internal/stardb"
)

var (
	queryCenter      string
	queryRadius      float64
	queryEye         string
	queryOrientation string
	queryFOV         float64
	queryAspect      float64
	queryLimitingMag float64
	queryMaxNames    int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a loaded catalog set",
}

var coneCmd = &cobra.Command{
	Use:   "cone",
	Short: "List stars within a radius of a point",
	Long: `Load the catalog set and list every star within the given radius
(light years) of the center point, nearest first.`,
	Run: runCone,
}

var visibleCmd = &cobra.Command{
	Use:   "visible",
	Short: "List stars visible from a viewpoint",
	Long: `Load the catalog set and list every star inside the view frustum
at or brighter than the limiting magnitude.`,
	Run: runVisible,
}

var nameCmd = &cobra.Command{
	Use:   "name <name>...",
	Short: "Resolve names or designations to stars",
	Args:  cobra.MinimumNArgs(1),
	Run:   runName,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(coneCmd)
	queryCmd.AddCommand(visibleCmd)
	queryCmd.AddCommand(nameCmd)

	coneCmd.Flags().StringVar(&queryCenter, "center", "0,0,0", "Center point x,y,z in light years")
	coneCmd.Flags().Float64Var(&queryRadius, "radius", 25, "Search radius in light years")

	visibleCmd.Flags().StringVar(&queryEye, "eye", "0,0,0", "Eye position x,y,z in light years")
	visibleCmd.Flags().StringVar(&queryOrientation, "orientation", "1,0,0,0", "View orientation quaternion w,x,y,z")
	visibleCmd.Flags().Float64Var(&queryFOV, "fov", 45, "Vertical field of view in degrees")
	visibleCmd.Flags().Float64Var(&queryAspect, "aspect", 1.78, "Viewport aspect ratio")
	visibleCmd.Flags().Float64Var(&queryLimitingMag, "limit", 6.0, "Limiting absolute magnitude")

	queryCmd.PersistentFlags().IntVar(&queryMaxNames, "max-names", 3, "Maximum names printed per star")
}

func parseVec3(s string) (catalog.Vec3, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return catalog.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return catalog.Vec3{}, fmt.Errorf("bad coordinate %q: %w", f, err)
		}
		out[i] = float32(v)
	}
	return catalog.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func parseQuat(s string) (octree.Quat, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return octree.Quat{}, fmt.Errorf("expected w,x,y,z, got %q", s)
	}
	var out [4]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return octree.Quat{}, fmt.Errorf("bad component %q: %w", f, err)
		}
		out[i] = float32(v)
	}
	return octree.Quat{W: out[0], X: out[1], Y: out[2], Z: out[3]}, nil
}

func printStar(db *stardb.StarDatabase, s *catalog.Star, distance float32) {
	var spectral string
	if d := s.Details(); d != nil {
		spectral = d.SpectralType()
	}
	fmt.Printf("%-40s  %8.3f ly  mag %6.2f  %s\n",
		db.StarNameList(s, queryMaxNames), distance, s.AbsoluteMagnitude(), spectral)
}

func runCone(cmd *cobra.Command, args []string) {
	center, err := parseVec3(queryCenter)
	if err != nil {
		exitWithError("bad --center", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := buildDatabase(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	var found []*catalog.Star
	db.FindCloseStars(center, float32(queryRadius), func(s *catalog.Star) {
		found = append(found, s)
	})
	sort.Slice(found, func(i, j int) bool {
		return found[i].Position().Sub(center).Length() < found[j].Position().Sub(center).Length()
	})

	for _, s := range found {
		printStar(db, s, s.Position().Sub(center).Length())
	}
	fmt.Printf("%d stars within %.1f ly\n", len(found), queryRadius)
}

func runVisible(cmd *cobra.Command, args []string) {
	eye, err := parseVec3(queryEye)
	if err != nil {
		exitWithError("bad --eye", err)
	}
	orientation, err := parseQuat(queryOrientation)
	if err != nil {
		exitWithError("bad --orientation", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := buildDatabase(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	fovY := float32(queryFOV / 180 * math.Pi)
	var found []*catalog.Star
	db.FindVisibleStars(eye, orientation, fovY, float32(queryAspect), float32(queryLimitingMag), func(s *catalog.Star) {
		found = append(found, s)
	})
	sort.Slice(found, func(i, j int) bool {
		return found[i].AbsoluteMagnitude() < found[j].AbsoluteMagnitude()
	})

	for _, s := range found {
		printStar(db, s, s.Position().Sub(eye).Length())
	}
	fmt.Printf("%d stars at or brighter than magnitude %.1f\n", len(found), queryLimitingMag)
}

func runName(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := buildDatabase(ctx)
	if err != nil {
		exitWithError("load failed", err)
	}

	for _, name := range args {
		s, ok := db.FindByName(name)
		if !ok {
			fmt.Printf("%s: not found\n", name)
			continue
		}
		printStar(db, s, s.Position().Length())
	}
}
