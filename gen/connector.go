// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/emergent/erand"
	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

const connLIL = `
// Connectivity from explicit lists, weights and delays included
bool init_from_lil(std::vector<int> row_indices, std::vector< std::vector<int> > column_indices, std::vector< std::vector<double> > values, std::vector< std::vector<int> > delays) {
    bool success = static_cast<REPR*>(this)->init_matrix_from_lil(row_indices, column_indices);
    if ( !success )
        return false;
LILW
LILD
INV
    return true;
}
`

const connFixedProb = `
// Fixed probability connectivity, weight and delay distribution arguments
// are means, bounds or standard deviations, delays in steps
bool fixed_probability_pattern(std::vector<int> post_ranks, std::vector<int> pre_ranks, double p, bool allow_self_connections, double w_dist_arg1, double w_dist_arg2, double d_dist_arg1, double d_dist_arg2) {
    bool success = static_cast<REPR*>(this)->fixed_probability_pattern(post_ranks, pre_ranks, p, allow_self_connections, rng[0]);
    if ( !success )
        return false;
DISTW
DISTD
INV
    return true;
}
`

const connFixedNumberPre = `
// Fixed number of pre-synaptic neurons per row
bool fixed_number_pre_pattern(std::vector<int> post_ranks, std::vector<int> pre_ranks, int nnz_per_row, bool allow_self_connections, double w_dist_arg1, double w_dist_arg2, double d_dist_arg1, double d_dist_arg2) {
    bool success = static_cast<REPR*>(this)->fixed_number_pre_pattern(post_ranks, pre_ranks, nnz_per_row, allow_self_connections, rng[0]);
    if ( !success )
        return false;
DISTW
DISTD
INV
    return true;
}
`

// connInverseCUDA builds the pre-indexed view of a device CSR on the host
// in two passes, then copies it to the device. A synapse count mismatch
// between the forward and inverse arrays is fatal.
const connInverseCUDA = `
// Pre-indexed view of the connectivity
std::vector<int> inv_col_ptr_;
std::vector<int> inv_row_idx_;
std::vector<int> inv_idx_;
int* gpu_col_ptr;
int* gpu_row_idx;
int* gpu_inv_idx;
bool inverse_computed_ = false;

void inverse_connectivity_matrix() {
    if ( inverse_computed_ )
        return;
    // pass 1: targets and forward offsets per pre rank
    std::vector< std::vector<int> > inv_targets(num_columns_);
    std::vector< std::vector<int> > inv_offsets(num_columns_);
    for (int i = 0; i < post_ranks_.size(); i++) {
        for (int j = row_begin_[i]; j < row_begin_[i+1]; j++) {
            inv_targets[col_idx_[j]].push_back(i);
            inv_offsets[col_idx_[j]].push_back(j);
        }
    }
    // pass 2: flatten in increasing pre rank order
    inv_col_ptr_ = std::vector<int>(num_columns_ + 1, 0);
    inv_row_idx_.clear();
    inv_idx_.clear();
    int off = 0;
    for (int pre = 0; pre < num_columns_; pre++) {
        inv_col_ptr_[pre] = off;
        inv_row_idx_.insert(inv_row_idx_.end(), inv_targets[pre].begin(), inv_targets[pre].end());
        inv_idx_.insert(inv_idx_.end(), inv_offsets[pre].begin(), inv_offsets[pre].end());
        off += inv_targets[pre].size();
    }
    inv_col_ptr_[num_columns_] = off;
    if ( inv_row_idx_.size() != col_idx_.size() )
        throw std::runtime_error("ProjStructID: inverse connectivity holds " + std::to_string(inv_row_idx_.size()) + " synapses, forward holds " + std::to_string(col_idx_.size()));

    cudaMalloc((void**)&gpu_col_ptr, inv_col_ptr_.size() * sizeof(int));
    cudaMemcpy(gpu_col_ptr, inv_col_ptr_.data(), inv_col_ptr_.size() * sizeof(int), cudaMemcpyHostToDevice);
    cudaMalloc((void**)&gpu_row_idx, inv_row_idx_.size() * sizeof(int));
    cudaMemcpy(gpu_row_idx, inv_row_idx_.data(), inv_row_idx_.size() * sizeof(int), cudaMemcpyHostToDevice);
    cudaMalloc((void**)&gpu_inv_idx, inv_idx_.size() * sizeof(int));
    cudaMemcpy(gpu_inv_idx, inv_idx_.data(), inv_idx_.size() * sizeof(int), cudaMemcpyHostToDevice);
    inverse_computed_ = true;
}
`

// weightInit returns the statements setting w from the distribution
// arguments of a pattern constructor.
func weightInit(rp erand.RndParams, ctype string, single bool) (string, error) {
	if _, _, err := conn.DistArgs(rp); err != nil {
		return "", err
	}
	if single {
		return "w = w_dist_arg1;", nil
	}
	switch rp.Dist {
	case erand.Uniform:
		return "w = init_matrix_variable_uniform< " + ctype + " >(w_dist_arg1, w_dist_arg2, rng[0]);", nil
	case erand.Gaussian:
		return "w = init_matrix_variable_normal< " + ctype + " >(w_dist_arg1, w_dist_arg2, rng[0]);", nil
	}
	return "w = init_matrix_variable< " + ctype + " >(static_cast< " + ctype + " >(w_dist_arg1));", nil
}

// delayInit returns the statements setting non-uniform delays from the
// distribution arguments of a pattern constructor.
func delayInit(pj *Projection) (string, error) {
	if pj.MaxDelay <= 1 || pj.UniformDelay() {
		return "", nil
	}
	if pj.Connector.Delays.Dist != erand.Uniform {
		return "", model.NotImplemented("projection %s: delays drawn from %v", pj.Nm, pj.Connector.Delays.Dist)
	}
	return "delay = init_matrix_variable_discrete_uniform< int >(d_dist_arg1, d_dist_arg2, rng[0]);", nil
}

// connectorCode returns the connectivity constructors of a projection.
// init_from_lil is always present; the pattern constructor of a runtime
// connector is added to it.
func (gn *Generator) connectorCode(pj *Projection, rp conn.Repr, plan []AttrPlan) (string, error) {
	wp, _ := Find(plan, "w")
	ctype := wp.CType
	if ctype == "" {
		ctype = gn.Cfg.FloatType()
	}
	single := wp.Locality == model.Global

	lilW := "w = init_matrix_variable_from_lil< " + ctype + " >(values);"
	if single {
		lilW = "w = values[0][0];"
	}
	lilD := ""
	if pj.MaxDelay > 1 && !pj.UniformDelay() {
		lilD = "delay = init_matrix_variable_from_lil< int >(delays);"
	}
	inv := ""
	if rp.Inverse() {
		inv = "inverse_connectivity_matrix();"
	}
	r := strings.NewReplacer(
		"REPR", rp.CppType(),
		"LILW", slot(lilW),
		"LILD", slot(lilD),
		"INV", slot(inv),
		"ProjStructID", "ProjStruct"+itoa(pj.ID),
	)
	var sb strings.Builder
	sb.WriteString(r.Replace(connLIL))

	if pj.Connector.Runtime() {
		dw, err := weightInit(pj.Connector.Weights, ctype, single)
		if err != nil {
			return "", err
		}
		dd, err := delayInit(pj)
		if err != nil {
			return "", err
		}
		pr := strings.NewReplacer(
			"REPR", rp.CppType(),
			"DISTW", slot(dw),
			"DISTD", slot(dd),
			"INV", slot(inv),
		)
		if pj.Connector.Kind == ConnFixedProbability {
			sb.WriteString(pr.Replace(connFixedProb))
		} else {
			sb.WriteString(pr.Replace(connFixedNumberPre))
		}
	}
	if rp == conn.CSRCMatrixCUDA {
		sb.WriteString(strings.ReplaceAll(connInverseCUDA, "ProjStructID", "ProjStruct"+itoa(pj.ID)))
	}
	return squeezeBlank(sb.String()), nil
}

// slot returns code indented as a function body line, without the
// trailing newline.
func slot(code string) string {
	if code == "" {
		return ""
	}
	return strings.TrimRight(tabify(code, 1), "\n")
}

func indented(ln string) bool {
	return strings.HasPrefix(ln, "    ")
}

// squeezeBlank drops the empty lines left by unused slots inside function
// bodies.
func squeezeBlank(code string) string {
	lines := strings.Split(code, "\n")
	out := make([]string, 0, len(lines))
	for i, ln := range lines {
		if ln == "" && len(out) > 0 && indented(out[len(out)-1]) {
			next := ""
			for _, nl := range lines[i+1:] {
				if nl != "" {
					next = nl
					break
				}
			}
			if indented(next) {
				continue
			}
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
