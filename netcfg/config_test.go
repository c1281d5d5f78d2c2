// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package netcfg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cf := Config{}
	cf.Defaults()
	assert.NoError(t, cf.Validate())
	assert.Equal(t, OpenMP, cf.Paradigm)
	assert.Equal(t, 1, cf.NumThreads)
	assert.Equal(t, "double", cf.FloatType())
	assert.False(t, cf.MultiThread())
	assert.Equal(t, DefaultSeed, cf.RandSeed())
}

func TestUpdateClamps(t *testing.T) {
	cf := Config{}
	cf.Defaults()
	cf.NumThreads = 0
	cf.ThreadsPerBlock = 4096
	cf.Update()
	assert.Equal(t, 1, cf.NumThreads)
	assert.Equal(t, MaxThreadsPerBlock, cf.ThreadsPerBlock)

	cf.Paradigm = CUDA
	cf.NumThreads = 8
	cf.Update()
	assert.Equal(t, 1, cf.NumThreads, "thread count is a CPU setting")
	assert.True(t, cf.GPU())
}

func TestValidate(t *testing.T) {
	cf := Config{}
	cf.Defaults()
	cf.Dt = 0
	assert.Error(t, cf.Validate())

	cf.Defaults()
	cf.Paradigm = ParadigmN
	assert.Error(t, cf.Validate())

	cf.Defaults()
	cf.NumThreads = 4
	assert.NoError(t, cf.Validate())
	assert.True(t, cf.MultiThread())
}

func TestSteps(t *testing.T) {
	cf := Config{}
	cf.Defaults()
	cf.Dt = 0.1
	assert.Equal(t, 30, cf.Steps(3))
	assert.Equal(t, 1, cf.Steps(0))
	cf.Precision = Float
	assert.Equal(t, "float", cf.FloatType())
}

func TestConfigJSON(t *testing.T) {
	cf := Config{}
	cf.Defaults()
	cf.Paradigm = CUDA
	cf.Precision = Float
	b, err := json.Marshal(cf)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"CUDA"`)
	var back Config
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, cf, back)

	p, err := StringToParadigm("OpenMP")
	require.NoError(t, err)
	assert.Equal(t, OpenMP, p)
	_, err = StringToParadigm("OpenCL")
	assert.Error(t, err)
}
