// Command ionhop-checkpoint is a small read-only inspection tool for
// the checkpoint files a solver run produces: given an I/O directory, a
// phase, and the job-model sizes needed to split the trailing
// jump-statistics span (collectionCount, particleLimit), it loads the
// primary (falling back to the backup) and prints the header offsets,
// meta scalars, and counter totals. It never writes back.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/niceyeti/ionhop/checkpoint"
)

func main() {
	ioDir := flag.String("ioPath", "", "directory containing state.prerun/state.main checkpoint files")
	phase := flag.String("phase", "main", "checkpoint phase: prerun or main")
	collections := flag.Int("collections", 1, "job model jump-collection count")
	particleLimit := flag.Int("particleLimit", 64, "job model particle id limit")
	flag.Parse()

	if *ioDir == "" {
		fmt.Fprintln(os.Stderr, "ionhop-checkpoint: -ioPath is required")
		os.Exit(1)
	}

	p := checkpoint.Phase(*phase)
	if p != checkpoint.PhasePrerun && p != checkpoint.PhaseMain {
		fmt.Fprintf(os.Stderr, "ionhop-checkpoint: unrecognized phase %q\n", *phase)
		os.Exit(1)
	}

	s, err := checkpoint.Load(*ioDir, p, *collections, *particleLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ionhop-checkpoint: %v\n", err)
		os.Exit(1)
	}
	if s == nil {
		fmt.Println("no checkpoint found; a fresh run would start from job-model defaults")
		return
	}

	printReport(s)
}

func printReport(s *checkpoint.State) {
	fmt.Printf("header:\n")
	fmt.Printf("  mcs=%d cycles=%d\n", s.Header.MCS, s.Header.Cycles)
	fmt.Printf("  meta@%d lattice@%d counters@%d\n", s.Header.MetaStartByte, s.Header.LatticeStartByte, s.Header.CountersStartByte)
	fmt.Printf("  globalTrackers@%d mobileTrackers@%d staticTrackers@%d\n",
		s.Header.GlobalTrackerStartByte, s.Header.MobileTrackerStartByte, s.Header.StaticTrackerStartByte)
	fmt.Printf("  mobileTrackerIdx@%d jumpStatistics@%d\n", s.Header.MobileTrackerIdxStartByte, s.Header.JumpStatisticsStartByte)

	fmt.Printf("meta:\n")
	fmt.Printf("  simulatedTimeS=%g latticeEnergyEV=%g\n", s.Meta.SimulatedTime, s.Meta.LatticeEnergy)
	fmt.Printf("  jumpNormalization=%g maxJumpProbability=%g\n", s.Meta.JumpNormalization, s.Meta.MaxJumpProbability)
	fmt.Printf("  rngState=%#x rngIncrease=%#x\n", s.Meta.RNGState, s.Meta.RNGIncrease)

	fmt.Printf("lattice: %d sites\n", len(s.Lattice))

	var mcs, cycles, rejections, siteBlocking int64
	for _, c := range s.Counters {
		mcs += c.MCSCount
		cycles += c.CycleCount
		rejections += c.RejectionCount
		siteBlocking += c.SiteBlockingCount
	}
	fmt.Printf("counters (summed over %d particles): mcs=%d cycles=%d rejections=%d siteBlocking=%d\n",
		len(s.Counters), mcs, cycles, rejections, siteBlocking)

	fmt.Printf("trackers: global=%d mobile=%d static=%d\n", len(s.GlobalTrackers), len(s.MobileTrackers), len(s.StaticTrackers))
	fmt.Printf("jumpStatistics: %d sets\n", len(s.JumpStatistics))
}
