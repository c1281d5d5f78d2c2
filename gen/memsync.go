// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gen

import (
	"strings"

	"github.com/emer/netgen/model"
)

// syncEnum declares the synchronization states, once per struct.
const syncEnum = `
// Synchronization state of a host/device pair
enum class SyncState { Clean, DirtyHost, DirtyDevice };
`

// syncData is the data of the memory transfer snippets.
type syncData struct {
	AttrPlan
	Count string `desc:"number of elements of the region, a C expression"`
	Host  string `desc:"host address of the region"`
}

var (
	syncDecl = snippet("syncDecl", `
// Device copy of {{.Name}}
{{.CType}}* gpu_{{.Name}};
SyncState {{.Name}}_sync;
`)
	syncInit = snippet("syncInit", `
cudaMalloc((void**)&gpu_{{.Name}}, {{.Count}} * sizeof({{.CType}}));
cudaMemcpy(gpu_{{.Name}}, {{.Host}}, {{.Count}} * sizeof({{.CType}}), cudaMemcpyHostToDevice);
{{.Name}}_sync = SyncState::Clean;
`)
	syncH2D = snippet("syncH2D", `
// {{.Name}}
if ( {{.Name}}_sync == SyncState::DirtyHost ) {
#ifdef _DEBUG
    std::cout << "HtoD {{.Name}}" << std::endl;
#endif
    cudaMemcpy(gpu_{{.Name}}, {{.Host}}, {{.Count}} * sizeof({{.CType}}), cudaMemcpyHostToDevice);
    {{.Name}}_sync = SyncState::Clean;
}
`)
	syncD2HVar = snippet("syncD2HVar", `
void device_to_host_{{.Name}}() {
    if ( {{.Name}}_sync == SyncState::DirtyDevice ) {
#ifdef _DEBUG
        std::cout << "DtoH {{.Name}}" << std::endl;
#endif
        cudaMemcpy({{.Host}}, gpu_{{.Name}}, {{.Count}} * sizeof({{.CType}}), cudaMemcpyDeviceToHost);
        {{.Name}}_sync = SyncState::Clean;
    }
}
`)
)

// syncFragments emits the device copies of every synchronized attribute
// and the transfers gated by their synchronization state. count returns
// the element count expression of an attribute region.
func syncFragments(fr *Fragments, plan []AttrPlan, count func(ap AttrPlan) string) {
	var decl, init, h2d, d2h, d2hv strings.Builder
	for _, ap := range plan {
		if !ap.Sync {
			continue
		}
		sd := syncData{AttrPlan: ap, Count: count(ap), Host: ap.Name + ".data()"}
		if ap.Locality == model.Global {
			sd.Host = "&" + ap.Name
		}
		decl.WriteString(expand(syncDecl, sd))
		init.WriteString(expand(syncInit, sd))
		h2d.WriteString(expand(syncH2D, sd))
		d2hv.WriteString(expand(syncD2HVar, sd))
		d2h.WriteString("device_to_host_" + ap.Name + "();\n")
	}
	if decl.Len() == 0 {
		return
	}
	fr.DeclareSync = syncEnum + decl.String()
	fr.InitSync = init.String()
	fr.HostToDevice = h2d.String()
	fr.DeviceToHost = d2h.String()
	fr.DeviceToHostVar = d2hv.String()
}

// markDevice returns the statements flagging every attribute written by
// a kernel as newer on the device.
func markDevice(plan []AttrPlan) string {
	var sb strings.Builder
	for _, ap := range plan {
		if ap.Sync && ap.KernelWrites {
			sb.WriteString(ap.Name + "_sync = SyncState::DirtyDevice;\n")
		}
	}
	return sb.String()
}

// popCount is the region size of a population attribute.
func popCount(ap AttrPlan) string {
	if ap.Locality == model.Global {
		return "1"
	}
	return "size"
}

// prjCount is the region size of a projection attribute.
func prjCount(ap AttrPlan) string {
	switch ap.Locality {
	case model.Local:
		return "nb_synapses()"
	case model.SemiGlobal:
		return "nb_dendrites()"
	}
	return "1"
}
