// Package config loads the YAML configuration of the storir command.
//
// A configuration file only needs the keys it changes; everything else keeps
// the value from Default. Command line flags override the loaded values.
//
//	acoustics:
//	  sample_rate: 48000
//	  rt60: 1200        # ms
//	  edt: 150          # ms
//	  itdg: 8           # ms
//	  er_duration: 80   # ms
//	  num_impulses: 10
//	synthesis:
//	  variant: improved
//	  drr: -3           # dB
//	  max_duration: 5s
//	output:
//	  folder: ./out
//	  bit_depth: 24
//	  dither: tpdf
package config
