package trial

// Reference energies measured on the stock subject build. They are checked to
// relative tolerance only; no deeper physical meaning is assumed.
const (
	smallProblemEnergy  = 2.596764e+05
	mediumProblemEnergy = 2.505353e+05
)

// Default returns the stock catalogue of trials, with every correctness trial
// checked against its reference energy at the given relative tolerance.
func Default(tolerance float64) *Registry {
	ref := func(energy float64) *Reference {
		return &Reference{Energy: energy, Tolerance: tolerance}
	}
	return NewRegistry(
		Spec{
			Name:        "small_problem",
			Description: "Small problem size (10^3) with 10 iterations",
			Args:        []string{"-s", "10", "-i", "10"},
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "medium_problem",
			Description: "Medium problem size (20^3) with 10 iterations",
			Args:        []string{"-s", "20", "-i", "10"},
			Reference:   ref(mediumProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "regions_test",
			Description: "Testing with 5 regions",
			Args:        []string{"-s", "10", "-i", "10", "-r", "5"},
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "balance_test",
			Description: "Testing with balance factor 2",
			Args:        []string{"-s", "10", "-i", "10", "-b", "2"},
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "cost_test",
			Description: "Testing with cost factor 2",
			Args:        []string{"-s", "10", "-i", "10", "-c", "2"},
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "perf_small",
			Description: "Performance test with small problem size",
			Args:        []string{"-s", "30", "-i", "20"},
			Category:    Performance,
		},
		Spec{
			Name:        "perf_medium",
			Description: "Performance test with medium problem size",
			Args:        []string{"-s", "50", "-i", "10"},
			Category:    Performance,
		},
		Spec{
			Name:        "mpi_2_ranks",
			Description: "Small problem size (10^3) with 10 iterations on 2 ranks",
			Args:        []string{"-s", "10", "-i", "10"},
			Ranks:       2,
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "mpi_4_ranks",
			Description: "Small problem size (10^3) with 10 iterations on 4 ranks",
			Args:        []string{"-s", "10", "-i", "10"},
			Ranks:       4,
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "mpi_8_ranks",
			Description: "Small problem size (10^3) with 10 iterations on 8 ranks",
			Args:        []string{"-s", "10", "-i", "10"},
			Ranks:       8,
			Reference:   ref(smallProblemEnergy),
			Category:    Correctness,
		},
		Spec{
			Name:        "mpi_perf_small",
			Description: "Performance test with small problem size on 4 ranks",
			Args:        []string{"-s", "30", "-i", "20"},
			Ranks:       4,
			Category:    Performance,
		},
		Spec{
			Name:        "mpi_perf_medium",
			Description: "Performance test with medium problem size on 8 ranks",
			Args:        []string{"-s", "50", "-i", "10"},
			Ranks:       8,
			Category:    Performance,
		},
	)
}
