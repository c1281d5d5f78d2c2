// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"
	"text/template"

	"github.com/emer/netgen/conn"
	"github.com/emer/netgen/model"
)

// attrData is the data of the per attribute snippets.
type attrData struct {
	AttrPlan
	ID        int
	Container string `desc:"C++ type of the local container"`
}

// snippet parses a per attribute template.
func snippet(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// expand executes tp on data. Templates are package constants, so an
// execution error is a programming error.
func expand(tp *template.Template, data any) string {
	var sb strings.Builder
	if err := tp.Execute(&sb, data); err != nil {
		panic(err)
	}
	return sb.String()
}

var (
	popDeclLocal = snippet("popDeclLocal", `
// Local {{.KindName}} {{.Name}}
std::vector< {{.CType}} > {{.Name}};
`)
	popDeclGlobal = snippet("popDeclGlobal", `
// Global {{.KindName}} {{.Name}}
{{.CType}} {{.Name}};
`)
	popAccLocal = snippet("popAccLocal", `
// Local {{.KindName}} {{.Name}}
std::vector< {{.CType}} > get_{{.Name}}() { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}return {{.Name}}; }
{{.CType}} get_single_{{.Name}}(int rk) { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}return {{.Name}}[rk]; }
void set_{{.Name}}(std::vector< {{.CType}} > val) { {{.Name}} = val;{{if .Sync}} {{.Name}}_sync = SyncState::DirtyHost;{{end}} }
void set_single_{{.Name}}(int rk, {{.CType}} val) { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}{{.Name}}[rk] = val;{{if .Sync}} {{.Name}}_sync = SyncState::DirtyHost;{{end}} }
`)
	popAccGlobal = snippet("popAccGlobal", `
// Global {{.KindName}} {{.Name}}
{{.CType}} get_{{.Name}}() { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}return {{.Name}}; }
void set_{{.Name}}({{.CType}} val) { {{.Name}} = val;{{if .Sync}} {{.Name}}_sync = SyncState::DirtyHost;{{end}} }
`)
	popInitLocal = snippet("popInitLocal", `
// Local {{.KindName}} {{.Name}}
{{.Name}} = std::vector< {{.CType}} >(size, {{.Init}});
`)
	popInitGlobal = snippet("popInitGlobal", `
// Global {{.KindName}} {{.Name}}
{{.Name}} = {{.Init}};
`)
)

// weavePopulation returns the declaration, accessor and initialization
// code of the population attributes.
func weavePopulation(pp *Population, plan []AttrPlan) (decl, acc, init string, err error) {
	var db, ab, ib strings.Builder
	for _, ap := range plan {
		ad := attrData{AttrPlan: ap, ID: pp.ID}
		switch ap.Locality {
		case model.Local:
			db.WriteString(expand(popDeclLocal, ad))
			ab.WriteString(expand(popAccLocal, ad))
			ib.WriteString(expand(popInitLocal, ad))
		case model.Global:
			db.WriteString(expand(popDeclGlobal, ad))
			ab.WriteString(expand(popAccGlobal, ad))
			ib.WriteString(expand(popInitGlobal, ad))
		default:
			return "", "", "", model.NotImplemented("population %s: %v attribute %s", pp.Nm, ap.Locality, ap.Name)
		}
	}
	return db.String(), ab.String(), ib.String(), nil
}

// localContainer returns the C++ container type of a local synaptic
// attribute. Device representations and flat formats keep one value per
// synapse in synapse order.
func localContainer(ctype string, rp conn.Repr) string {
	switch {
	case rp.GPU():
		return "std::vector< " + ctype + " >"
	case rp.Sliced() && rp.Format() == conn.FormatLIL:
		return "std::vector< std::vector< std::vector< " + ctype + " > > >"
	case rp.Format() == conn.FormatLIL:
		return "std::vector< std::vector< " + ctype + " > >"
	}
	return "std::vector< " + ctype + " >"
}

var (
	prjDeclLocal = snippet("prjDeclLocal", `
// Local {{.KindName}} {{.Name}}
{{.Container}} {{.Name}};
`)
	prjDeclSemi = snippet("prjDeclSemi", `
// Semiglobal {{.KindName}} {{.Name}}
std::vector< {{.CType}} > {{.Name}};
`)
	prjDeclGlobal = snippet("prjDeclGlobal", `
// Global {{.KindName}} {{.Name}}
{{.CType}} {{.Name}};
`)
	prjInitLocal = snippet("prjInitLocal", `
// Local {{.KindName}} {{.Name}}
{{.Name}} = init_matrix_variable< {{.CType}} >(static_cast< {{.CType}} >({{.Init}}));
`)
	prjInitSemi = snippet("prjInitSemi", `
// Semiglobal {{.KindName}} {{.Name}}
{{.Name}} = init_vector_variable< {{.CType}} >(static_cast< {{.CType}} >({{.Init}}));
`)
	prjInitGlobal = snippet("prjInitGlobal", `
// Global {{.KindName}} {{.Name}}
{{.Name}} = {{.Init}};
`)

	prjGetAll = snippet("prjGetAll", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{if .Sync}}device_to_host_{{.Name}}();
    {{end}}return get_matrix_variable_all< {{.CType}} >({{.Name}});
}
`)
	prjGetRow = snippet("prjGetRow", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{if .Sync}}device_to_host_{{.Name}}();
    {{end}}return get_matrix_variable_row< {{.CType}} >({{.Name}}, rk_post);
}
`)
	prjGetOne = snippet("prjGetOne", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{if .Sync}}device_to_host_{{.Name}}();
    {{end}}return get_matrix_variable< {{.CType}} >({{.Name}}, rk_post, rk_pre);
}
`)
	prjSetAll = snippet("prjSetAll", `
if ( name.compare("{{.Name}}") == 0 ) {
    update_matrix_variable_all< {{.CType}} >({{.Name}}, value);{{if .Sync}}
    {{.Name}}_sync = SyncState::DirtyHost;{{end}}
    return;
}
`)
	prjSetRow = snippet("prjSetRow", `
if ( name.compare("{{.Name}}") == 0 ) {
    update_matrix_variable_row< {{.CType}} >({{.Name}}, rk_post, value);{{if .Sync}}
    {{.Name}}_sync = SyncState::DirtyHost;{{end}}
    return;
}
`)
	prjSetOne = snippet("prjSetOne", `
if ( name.compare("{{.Name}}") == 0 ) {
    update_matrix_variable< {{.CType}} >({{.Name}}, rk_post, rk_pre, value);{{if .Sync}}
    {{.Name}}_sync = SyncState::DirtyHost;{{end}}
    return;
}
`)
	prjSemiGetAll = snippet("prjSemiGetAll", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{if .Sync}}device_to_host_{{.Name}}();
    {{end}}return get_vector_variable_all< {{.CType}} >({{.Name}});
}
`)
	prjSemiGetOne = snippet("prjSemiGetOne", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{if .Sync}}device_to_host_{{.Name}}();
    {{end}}return get_vector_variable< {{.CType}} >({{.Name}}, rk_post);
}
`)
	prjSemiSetAll = snippet("prjSemiSetAll", `
if ( name.compare("{{.Name}}") == 0 ) {
    update_vector_variable_all< {{.CType}} >({{.Name}}, value);{{if .Sync}}
    {{.Name}}_sync = SyncState::DirtyHost;{{end}}
    return;
}
`)
	prjSemiSetOne = snippet("prjSemiSetOne", `
if ( name.compare("{{.Name}}") == 0 ) {
    update_vector_variable< {{.CType}} >({{.Name}}, rk_post, value);{{if .Sync}}
    {{.Name}}_sync = SyncState::DirtyHost;{{end}}
    return;
}
`)
	prjGlobGet = snippet("prjGlobGet", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{if .Sync}}device_to_host_{{.Name}}();
    {{end}}return {{.Name}};
}
`)
	prjGlobSet = snippet("prjGlobSet", `
if ( name.compare("{{.Name}}") == 0 ) {
    {{.Name}} = value;{{if .Sync}}
    {{.Name}}_sync = SyncState::DirtyHost;{{end}}
    return;
}
`)
	prjFlat = snippet("prjFlat", `
// Local {{.KindName}} {{.Name}} by flat synapse rank
std::vector< {{.CType}} > get_{{.Name}}() { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}return flatten_matrix_variable< {{.CType}} >({{.Name}}); }
{{.CType}} get_single_{{.Name}}(int rk) { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}return get_matrix_variable_by_rank< {{.CType}} >({{.Name}}, rk); }
void set_{{.Name}}(std::vector< {{.CType}} > val) { unflatten_matrix_variable< {{.CType}} >({{.Name}}, val);{{if .Sync}} {{.Name}}_sync = SyncState::DirtyHost;{{end}} }
void set_single_{{.Name}}(int rk, {{.CType}} val) { {{if .Sync}}device_to_host_{{.Name}}(); {{end}}update_matrix_variable_by_rank< {{.CType}} >({{.Name}}, rk, val);{{if .Sync}} {{.Name}}_sync = SyncState::DirtyHost;{{end}} }
`)

	prjDispatch = template.Must(template.New("prjDispatch").Parse(`
std::vector< std::vector< {{.FT}} > > get_local_attribute_all(std::string name) {
{{.LocalGetAll}}
    // should not happen
    std::cerr << "ProjStruct{{.ID}}::get_local_attribute_all: " << name << " not found" << std::endl;
    return std::vector< std::vector< {{.FT}} > >();
}

std::vector< {{.FT}} > get_local_attribute_row(std::string name, int rk_post) {
{{.LocalGetRow}}
    // should not happen
    std::cerr << "ProjStruct{{.ID}}::get_local_attribute_row: " << name << " not found" << std::endl;
    return std::vector< {{.FT}} >();
}

{{.FT}} get_local_attribute(std::string name, int rk_post, int rk_pre) {
{{.LocalGetOne}}
    // should not happen
    std::cerr << "ProjStruct{{.ID}}::get_local_attribute: " << name << " not found" << std::endl;
    return 0.0;
}

void set_local_attribute_all(std::string name, std::vector< std::vector< {{.FT}} > > value) {
{{.LocalSetAll}}
    std::cerr << "ProjStruct{{.ID}}::set_local_attribute_all: " << name << " not found" << std::endl;
}

void set_local_attribute_row(std::string name, int rk_post, std::vector< {{.FT}} > value) {
{{.LocalSetRow}}
    std::cerr << "ProjStruct{{.ID}}::set_local_attribute_row: " << name << " not found" << std::endl;
}

void set_local_attribute(std::string name, int rk_post, int rk_pre, {{.FT}} value) {
{{.LocalSetOne}}
    std::cerr << "ProjStruct{{.ID}}::set_local_attribute: " << name << " not found" << std::endl;
}

std::vector< {{.FT}} > get_semiglobal_attribute_all(std::string name) {
{{.SemiGetAll}}
    // should not happen
    std::cerr << "ProjStruct{{.ID}}::get_semiglobal_attribute_all: " << name << " not found" << std::endl;
    return std::vector< {{.FT}} >();
}

{{.FT}} get_semiglobal_attribute(std::string name, int rk_post) {
{{.SemiGetOne}}
    // should not happen
    std::cerr << "ProjStruct{{.ID}}::get_semiglobal_attribute: " << name << " not found" << std::endl;
    return 0.0;
}

void set_semiglobal_attribute_all(std::string name, std::vector< {{.FT}} > value) {
{{.SemiSetAll}}
    std::cerr << "ProjStruct{{.ID}}::set_semiglobal_attribute_all: " << name << " not found" << std::endl;
}

void set_semiglobal_attribute(std::string name, int rk_post, {{.FT}} value) {
{{.SemiSetOne}}
    std::cerr << "ProjStruct{{.ID}}::set_semiglobal_attribute: " << name << " not found" << std::endl;
}

{{.FT}} get_global_attribute(std::string name) {
{{.GlobGet}}
    // should not happen
    std::cerr << "ProjStruct{{.ID}}::get_global_attribute: " << name << " not found" << std::endl;
    return 0.0;
}

void set_global_attribute(std::string name, {{.FT}} value) {
{{.GlobSet}}
    std::cerr << "ProjStruct{{.ID}}::set_global_attribute: " << name << " not found" << std::endl;
}
{{.Flat}}`))
)

// dispatchData collects the branches of the name dispatched accessors.
type dispatchData struct {
	ID          int
	FT          string
	LocalGetAll string
	LocalGetRow string
	LocalGetOne string
	LocalSetAll string
	LocalSetRow string
	LocalSetOne string
	SemiGetAll  string
	SemiGetOne  string
	SemiSetAll  string
	SemiSetOne  string
	GlobGet     string
	GlobSet     string
	Flat        string
}

// weaveProjection returns the declaration, accessor and initialization
// code of the projection attributes. w is initialized by the connector
// code, see connectorCode.
func weaveProjection(pj *Projection, plan []AttrPlan, rp conn.Repr, ft string) (decl, acc, init string) {
	var db, ib strings.Builder
	dd := dispatchData{ID: pj.ID, FT: ft}
	for _, ap := range plan {
		ad := attrData{AttrPlan: ap, ID: pj.ID, Container: localContainer(ap.CType, rp)}
		switch ap.Locality {
		case model.Local:
			db.WriteString(expand(prjDeclLocal, ad))
			if ap.Name != "w" {
				ib.WriteString(expand(prjInitLocal, ad))
			}
			dd.LocalGetAll += tabify(expand(prjGetAll, ad), 1)
			dd.LocalGetRow += tabify(expand(prjGetRow, ad), 1)
			dd.LocalGetOne += tabify(expand(prjGetOne, ad), 1)
			dd.LocalSetAll += tabify(expand(prjSetAll, ad), 1)
			dd.LocalSetRow += tabify(expand(prjSetRow, ad), 1)
			dd.LocalSetOne += tabify(expand(prjSetOne, ad), 1)
			dd.Flat += expand(prjFlat, ad)
		case model.SemiGlobal:
			db.WriteString(expand(prjDeclSemi, ad))
			ib.WriteString(expand(prjInitSemi, ad))
			dd.SemiGetAll += tabify(expand(prjSemiGetAll, ad), 1)
			dd.SemiGetOne += tabify(expand(prjSemiGetOne, ad), 1)
			dd.SemiSetAll += tabify(expand(prjSemiSetAll, ad), 1)
			dd.SemiSetOne += tabify(expand(prjSemiSetOne, ad), 1)
		default:
			db.WriteString(expand(prjDeclGlobal, ad))
			if ap.Name != "w" {
				ib.WriteString(expand(prjInitGlobal, ad))
			}
			dd.GlobGet += tabify(expand(prjGlobGet, ad), 1)
			dd.GlobSet += tabify(expand(prjGlobSet, ad), 1)
		}
	}
	return db.String(), expand(prjDispatch, dd), ib.String()
}
