// Package synth synthesizes stochastic room impulse responses from a small
// set of perceptual room parameters.
//
// A response is modelled as a direct-sound impulse followed by an initial
// time delay gap, a dense early-reflection segment decaying at the EDT rate
// and a late reverberant tail decaying at the RT60 rate. Each segment is
// white noise shaped by a piecewise exponential Envelope that is continuous
// in level across segment boundaries:
//
//	level (dB)
//	  0 |--.
//	    |  :\         early: 10 dB per EDT
//	    |  : \___
//	    |  :     \____     late: 60 dB per RT60
//	    |  :          \_______
//	 -80|__:__________________\____ t
//	      itdg  itdg+er
//
// # Usage
//
//	p := synth.DefaultParams()
//	s, err := synth.NewSynthesizer(p)
//	if err != nil {
//		return err // wraps synth.ErrInvalidParameter
//	}
//	buf, err := s.Generate(0, 42) // draw 0, base seed 42
//
// Every draw owns its own PCG32 generator seeded from the base seed and the
// draw index, so a draw's output never depends on scheduling order.
package synth
