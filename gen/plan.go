// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emer/netgen/model"
	"github.com/emer/netgen/netcfg"
	"github.com/goki/ki/indent"
)

// AttrPlan is the resolved storage plan of one attribute. The emitted code
// and the host-side model in package hostsim are both built from it.
type AttrPlan struct {
	Name         string
	CType        string         `desc:"scalar C type after applying the configured precision"`
	Locality     model.Locality `desc:"effective locality, which can differ from the declared one"`
	Kind         model.AttrKind
	Init         string `desc:"initial value expression"`
	Sync         bool   `desc:"has a device copy and a synchronization state"`
	KernelWrites bool   `desc:"written by the update kernel, so a launch leaves the device copy newer"`
}

// IsParam returns true for parameters.
func (ap AttrPlan) IsParam() bool {
	return ap.Kind == model.ParamAttr
}

// KindName returns parameter or variable, for generated comments.
func (ap AttrPlan) KindName() string {
	if ap.IsParam() {
		return "parameter"
	}
	return "variable"
}

func (ap AttrPlan) String() string {
	return fmt.Sprintf("%s %s (%v %s)", ap.CType, ap.Name, ap.Locality, ap.KindName())
}

// PlanAttributes returns the attribute plan of a description, parameters
// first, the first declaration of a name winning. With singleWeight, w is
// planned as one global scalar whatever its declared locality.
func PlanAttributes(desc *model.Description, singleWeight bool, cf *netcfg.Config) []AttrPlan {
	written := map[string]bool{}
	if desc.Spike != nil {
		for _, eq := range desc.Spike.Reset {
			written[eq.Name] = true
		}
	}
	for _, eq := range desc.PreSpike {
		written[eq.Name] = true
	}
	attrs := desc.Attributes()
	plan := make([]AttrPlan, 0, len(attrs))
	for _, vr := range attrs {
		ap := AttrPlan{
			Name:         vr.Name,
			CType:        precisionType(vr.CType, cf),
			Locality:     vr.Locality,
			Kind:         vr.Kind,
			Init:         vr.InitValue(),
			Sync:         cf.GPU(),
			KernelWrites: vr.HasEq() || written[vr.Name],
		}
		if vr.Name == "w" && singleWeight {
			ap.Locality = model.Global
		}
		plan = append(plan, ap)
	}
	return plan
}

// precisionType maps floating point types onto the configured precision.
func precisionType(ctype string, cf *netcfg.Config) string {
	if ctype == "double" || ctype == "float" {
		return cf.FloatType()
	}
	return ctype
}

// Find returns the plan entry of given name.
func Find(plan []AttrPlan, name string) (AttrPlan, bool) {
	for _, ap := range plan {
		if ap.Name == name {
			return ap, true
		}
	}
	return AttrPlan{}, false
}

// Index holds the substitutions of the index placeholders in expressions.
type Index struct {
	Local      string
	SemiGlobal string
	Global     string
	Pre        string
	Post       string
	ID         int
	IDPre      int
	IDPost     int
	Target     string
}

// Replace substitutes every placeholder in code.
func (ix *Index) Replace(code string) string {
	rp := strings.NewReplacer(
		"{local_index}", ix.Local,
		"{semiglobal_index}", ix.SemiGlobal,
		"{global_index}", ix.Global,
		"{pre_index}", ix.Pre,
		"{post_index}", ix.Post,
		"{id_pre}", fmt.Sprint(ix.IDPre),
		"{id_post}", fmt.Sprint(ix.IDPost),
		"{id}", fmt.Sprint(ix.ID),
		"{target}", ix.Target,
	)
	return rp.Replace(code)
}

// tabify indents every non-empty line of code by level steps of 4 spaces.
func tabify(code string, level int) string {
	pad := indent.Spaces(level, 4)
	lines := strings.Split(strings.Trim(code, "\n"), "\n")
	var sb strings.Builder
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t")
		if ln == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(pad)
		sb.WriteString(ln)
		sb.WriteString("\n")
	}
	return sb.String()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
