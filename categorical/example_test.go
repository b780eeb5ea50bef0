package categorical_test

import (
	"fmt"

	"github.com/ajviljoen/obsdata/categorical"
)

func ExampleBuild() {
	samples := []categorical.Sample[string]{
		{Time: 2.0, Value: "slew"},
		{Time: 9.0, Value: "track"},
		{Time: 41.0, Value: "slew"},
		{Time: 49.0, Value: "track"},
	}
	grid := categorical.Grid{Start: 4.0, Period: 8.0, Length: 10}

	tl, err := categorical.Build(samples, grid, categorical.Options[string]{
		Greedy:     []string{"slew", "stop"},
		Initial:    "slew",
		HasInitial: true,
	})
	if err != nil {
		fmt.Println("Build failed:", err)
	}

	for _, s := range tl.Segments() {
		fmt.Printf("%d:%d %s\n", s.Start, s.Stop, s.Value)
	}
	// Output:
	// 0:1 slew
	// 1:5 track
	// 5:6 slew
	// 6:10 track
}

func ExampleCategorical_Align() {
	tl, err := categorical.NewCategorical([]string{"cal", "raster"}, []int{0, 3, 10})
	if err != nil {
		fmt.Println("NewCategorical failed:", err)
	}

	if err := tl.Align([]int{0, 4, 10}); err != nil {
		fmt.Println("Align failed:", err)
	}

	for _, s := range tl.Segments() {
		fmt.Printf("%d:%d %s\n", s.Start, s.Stop, s.Value)
	}
	// Output:
	// 0:4 cal
	// 4:10 raster
}
