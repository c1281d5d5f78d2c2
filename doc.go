// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package netgen is the overall repository for the code generator that turns a
described network of neuron populations and projections into C++ (OpenMP)
or CUDA sources implementing their simulation.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* model: the neuron and synapse model descriptions (variables, equations,
random variables, spike conditions) and the generation errors.

* netcfg: the global generation settings (paradigm, precision, threads, time
step, seed, CUDA launch sizes).

* conn: the connectivity matrices (LIL, CSR, CSRC, COO, ELL, HYB, dense) and
their C++ type descriptions, plus the heuristics selecting one for a projection.

* gen: the populations, projections and network, with the code templates that
assemble each of them into a compilation unit.

* hostsim: a host side model of the generated entities, with the accessors,
host / device synchronization and delay queues that the generated code
exposes.

* examples: these actually compile into runnable programs. examples/basic
generates a small rate and spiking network for every paradigm.
*/
package netgen
