// Package yearbook answers questions over entity × year datasets.
//
// Usage:
//
//	import "github.com/spektr-org/yearbook/engine"
//
//	s := engine.NewSession(engine.WithProfiles(cfg))
//	datasets := s.Load("population.csv", "life.csv")
//	report := s.CompareSchemas(datasets)
//
//	idx, err := s.BuildIndex(datasets[0])
//	res, err := s.Query(idx, engine.QuerySpec{Sort: engine.Descending, Limit: 10})
//
// Files are read by the loader package, their headers classified by the
// schema package, and values reshaped into a per-entity, per-year index
// by the engine package. All computation is local and in memory.
package yearbook
