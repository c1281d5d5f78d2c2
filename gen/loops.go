// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

// synLoop is one CPU iteration over synapses. Open declares i (row),
// rk_post, rk_pre and whatever Local and Semi refer to; the body goes at
// indentation Level.
type synLoop struct {
	Open  string
	Close string
	Level int
	Local string `desc:"substitution of {local_index}"`
	Semi  string `desc:"substitution of {semiglobal_index}, empty if rows are not post neurons"`
}

// wrap returns the loop around body.
func (sl synLoop) wrap(body string) string {
	return sl.Open + tabify(body, sl.Level) + sl.Close
}

const ompFor = "#pragma omp parallel for\n"

// ompIf returns the parallel for pragma when running multi-threaded.
func ompIf(mt bool) string {
	if mt {
		return ompFor
	}
	return ""
}

// updateLoops returns the loops visiting every synapse of a CPU
// representation once. HYB needs two: its ELL part then its COO part.
func updateLoops(rp conn.Repr, mt bool) ([]synLoop, error) {
	omp := ompIf(mt)
	switch rp {
	case conn.LILMatrix, conn.LILInvMatrix:
		return []synLoop{{
			Open: omp + `for (int i = 0; i < post_rank.size(); i++) {
    int rk_post = post_rank[i];
    for (int j = 0; j < pre_rank[i].size(); j++) {
        int rk_pre = pre_rank[i][j];
`,
			Close: "    }\n}\n", Level: 2, Local: "[i][j]", Semi: "[i]",
		}}, nil
	case conn.ParallelLIL:
		return []synLoop{{
			Open: `#pragma omp parallel
{
    int tid = omp_get_thread_num();
    auto sub = sub_matrices_[tid];
    int row_off = sub_offsets_[tid];
    for (int i = 0; i < sub->post_rank.size(); i++) {
        int rk_post = sub->post_rank[i];
        for (int j = 0; j < sub->pre_rank[i].size(); j++) {
            int rk_pre = sub->pre_rank[i][j];
`,
			Close: "        }\n    }\n}\n", Level: 3, Local: "[tid][i][j]", Semi: "[row_off + i]",
		}}, nil
	case conn.CSRMatrix, conn.CSRCMatrix:
		return []synLoop{{
			Open: omp + `for (int i = 0; i < post_ranks_.size(); i++) {
    int rk_post = post_ranks_[i];
    for (int j = row_begin_[i]; j < row_begin_[i+1]; j++) {
        int rk_pre = col_idx_[j];
`,
			Close: "    }\n}\n", Level: 2, Local: "[j]", Semi: "[i]",
		}}, nil
	case conn.CSRCMatrixT, conn.CSRCMatrixTOMP:
		return []synLoop{{
			Open: omp + `for (int rk_pre = 0; rk_pre < num_rows_; rk_pre++) {
    for (int j = row_begin_[rk_pre]; j < row_begin_[rk_pre+1]; j++) {
        int rk_post = col_idx_[j];
`,
			Close: "    }\n}\n", Level: 2, Local: "[j]",
		}}, nil
	case conn.COOMatrix:
		return []synLoop{{
			Open: omp + `for (int j = 0; j < row_indices_.size(); j++) {
    int i = row_indices_[j];
    int rk_post = post_ranks_[i];
    int rk_pre = column_indices_[j];
`,
			Close: "}\n", Level: 1, Local: "[j]", Semi: "[i]",
		}}, nil
	case conn.ELLMatrix:
		return []synLoop{{
			Open: omp + `for (int i = 0; i < post_ranks_.size(); i++) {
    int rk_post = post_ranks_[i];
    for (int k = 0; k < rl_[i]; k++) {
        int j = i * maxnzr_ + k;
        int rk_pre = col_idx_[j];
`,
			Close: "    }\n}\n", Level: 2, Local: "[j]", Semi: "[i]",
		}}, nil
	case conn.HYBMatrix:
		return []synLoop{{
			Open: "// ELL part\n" + omp + `for (int i = 0; i < ell_matrix_.post_ranks_.size(); i++) {
    int rk_post = ell_matrix_.post_ranks_[i];
    for (int k = 0; k < ell_matrix_.rl_[i]; k++) {
        int j = i * ell_matrix_.maxnzr_ + k;
        int rk_pre = ell_matrix_.col_idx_[j];
`,
			Close: "    }\n}\n", Level: 2, Local: "[j]", Semi: "[i]",
		}, {
			Open: "// COO part\n" + omp + `for (int c = 0; c < coo_matrix_.row_indices_.size(); c++) {
    int j = ell_size_ + c;
    int i = coo_matrix_.row_indices_[c];
    int rk_post = coo_matrix_.post_ranks_[i];
    int rk_pre = coo_matrix_.column_indices_[c];
`,
			Close: "}\n", Level: 1, Local: "[j]", Semi: "[i]",
		}}, nil
	}
	return nil, model.NotImplemented("no CPU synapse loop for %v", rp)
}

// rowLoop returns the CPU loop over post-synaptic rows, for semiglobal
// equations.
func rowLoop(rp conn.Repr, mt bool) (synLoop, error) {
	omp := ompIf(mt)
	switch rp {
	case conn.LILMatrix, conn.LILInvMatrix:
		return synLoop{Open: omp + "for (int i = 0; i < post_rank.size(); i++) {\n    int rk_post = post_rank[i];\n", Close: "}\n", Level: 1, Semi: "[i]"}, nil
	case conn.ParallelLIL:
		return synLoop{Open: `#pragma omp parallel
{
    int tid = omp_get_thread_num();
    auto sub = sub_matrices_[tid];
    int row_off = sub_offsets_[tid];
    for (int i = 0; i < sub->post_rank.size(); i++) {
        int rk_post = sub->post_rank[i];
`, Close: "    }\n}\n", Level: 2, Semi: "[row_off + i]"}, nil
	case conn.CSRMatrix, conn.CSRCMatrix, conn.COOMatrix, conn.ELLMatrix:
		return synLoop{Open: omp + "for (int i = 0; i < post_ranks_.size(); i++) {\n    int rk_post = post_ranks_[i];\n", Close: "}\n", Level: 1, Semi: "[i]"}, nil
	case conn.HYBMatrix:
		return synLoop{Open: omp + "for (int i = 0; i < ell_matrix_.post_ranks_.size(); i++) {\n    int rk_post = ell_matrix_.post_ranks_[i];\n", Close: "}\n", Level: 1, Semi: "[i]"}, nil
	}
	return synLoop{}, model.NotImplemented("semiglobal equations with %v", rp)
}

// spikeLoop returns the CPU loop over the synapses of every pre-synaptic
// spike, through the inverse connectivity. spiked is the spike list.
func spikeLoop(rp conn.Repr, spiked string, mt bool) (synLoop, error) {
	omp := ompIf(mt)
	r := strings.NewReplacer("SPIKED", spiked)
	switch rp {
	case conn.LILInvMatrix:
		return synLoop{Open: r.Replace(`for (int s = 0; s < SPIKED.size(); s++) {
    int rk_pre = SPIKED[s];
    for (int k = inv_col_ptr_[rk_pre]; k < inv_col_ptr_[rk_pre+1]; k++) {
        int i = inv_row_idx_[k];
        int j = inv_idx_[k];
        int rk_post = post_rank[i];
`), Close: "    }\n}\n", Level: 2, Local: "[i][j]", Semi: "[i]"}, nil
	case conn.ParallelLIL:
		return synLoop{Open: r.Replace(`#pragma omp parallel
{
    int tid = omp_get_thread_num();
    auto sub = sub_matrices_[tid];
    int row_off = sub_offsets_[tid];
    for (int s = 0; s < SPIKED.size(); s++) {
        int rk_pre = SPIKED[s];
        for (int k = sub->inv_col_ptr_[rk_pre]; k < sub->inv_col_ptr_[rk_pre+1]; k++) {
            int i = sub->inv_row_idx_[k];
            int j = sub->inv_idx_[k];
            int rk_post = sub->post_rank[i];
`), Close: "        }\n    }\n}\n", Level: 3, Local: "[tid][i][j]", Semi: "[row_off + i]"}, nil
	case conn.CSRCMatrix:
		return synLoop{Open: omp + r.Replace(`for (int s = 0; s < SPIKED.size(); s++) {
    int rk_pre = SPIKED[s];
    for (int k = inv_col_ptr_[rk_pre]; k < inv_col_ptr_[rk_pre+1]; k++) {
        int i = inv_row_idx_[k];
        int j = inv_idx_[k];
        int rk_post = post_ranks_[i];
`), Close: "    }\n}\n", Level: 2, Local: "[j]", Semi: "[i]"}, nil
	case conn.CSRCMatrixT, conn.CSRCMatrixTOMP:
		return synLoop{Open: omp + r.Replace(`for (int s = 0; s < SPIKED.size(); s++) {
    int rk_pre = SPIKED[s];
    for (int j = row_begin_[rk_pre]; j < row_begin_[rk_pre+1]; j++) {
        int rk_post = col_idx_[j];
`), Close: "    }\n}\n", Level: 2, Local: "[j]"}, nil
	}
	return synLoop{}, model.NotImplemented("no CPU spike propagation for %v", rp)
}

// eventLoop returns the CPU loop over the events due this step, for
// non-uniform spike delays. Events are (row, column) pairs.
func eventLoop(rp conn.Repr) (synLoop, error) {
	switch rp {
	case conn.LILInvMatrix:
		return synLoop{Open: `for (auto& ev : _delayed_spikes.front()) {
    int i = ev.first;
    int j = ev.second;
    int rk_post = post_rank[i];
    int rk_pre = pre_rank[i][j];
`, Close: "}\n", Level: 1, Local: "[i][j]", Semi: "[i]"}, nil
	case conn.CSRCMatrix:
		return synLoop{Open: `for (auto& ev : _delayed_spikes.front()) {
    int i = ev.first;
    int j = ev.second;
    int rk_post = post_ranks_[i];
    int rk_pre = col_idx_[j];
`, Close: "}\n", Level: 1, Local: "[j]", Semi: "[i]"}, nil
	}
	return synLoop{}, model.Unsupported("non-uniform spike delays with %v", rp)
}
