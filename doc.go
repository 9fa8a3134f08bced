// Package grouper serves a roster of people and splits it into randomized,
// job-balanced groups on demand.
//
// A person carries a name, a job and a department. People who share a job and
// a department form a bucket, and the balanced strategy spreads every bucket
// across the groups so no group ends up with all the engineers.
//
// # Quick Start
//
// Partition a roster directly:
//
//	import "github.com/arloliu/grouper"
//
//	groups := grouper.Partition(people, 3)
//	for i, g := range groups {
//	    fmt.Printf("グループ%d: %s\n", i+1, strings.Join(g.Names(), ", "))
//	}
//
// Or run a Service that loads the roster once in the background:
//
//	cfg := grouper.DefaultConfig()
//	svc, err := grouper.NewService(&cfg, source.NewStatic(source.DefaultRoster()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Stop(context.Background())
//
//	groups, err := svc.Shuffle(2) // ErrRosterLoading until the load finishes
//
// # Partitioning
//
// The balanced strategy works in three passes:
//
//  1. Fisher-Yates shuffle of a copy of the roster
//  2. Bucket people by job+department in shuffled encounter order
//  3. Deal buckets round-robin into min(groupCount, len(roster)) groups with
//     one cursor that carries over between buckets
//
// A non-positive group count or an empty roster yields no groups. Every call
// draws fresh randomness unless a seeded source is supplied with WithRand.
//
// # Roster Sources
//
// The source package provides static, file (YAML/JSON), SQLite, NATS
// JetStream KV and Notion providers. OpenRosterProvider picks one from
// Config.Roster.Source.
//
// # Roster States
//
// The roster is Loading until the first load settles, then Loaded or Failed:
//
//	Loading → Loaded
//	Loading → Failed
//
// Refresh moves it back to Loading. Shuffle refuses to run while loading so
// a click before the data arrives never produces empty groups.
//
// See the examples/ directory and cmd/grouper for complete programs.
package grouper
