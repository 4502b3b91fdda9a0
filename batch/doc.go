// Package batch renders the independent draws of a synthesis run on bounded
// worker pools and hands each finished response to a Writer.
//
// Synthesis is CPU bound and runs on a compute pool sized to the machine;
// writing is I/O bound and runs on a separate, smaller pool fed over a
// channel. A draw that fails to write is recorded in the Summary and does not
// stop the others. Draw k depends only on the parameters, the base seed and k,
// so a run is reproducible regardless of the number of workers.
//
// # Usage
//
//	d, err := batch.New(params, batch.WithBaseSeed(42))
//	if err != nil {
//		return err // invalid parameters, nothing was rendered
//	}
//	summary, err := d.Run(ctx, writer)
//	if err == nil {
//		err = summary.Err()
//	}
package batch
