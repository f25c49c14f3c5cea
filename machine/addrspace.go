package machine

import "github.com/TrellixVulnTeam/NachOS-PO5F/internal/debug"

// PageSize is the simulated page size in bytes.
const PageSize = 128

// AddrSpace is a thread's memory-mapping state. The real page-table
// machinery lives outside this core; what the scheduler needs is an
// owned handle whose mapping state can be reinstalled after a context
// switch.
type AddrSpace struct {
	numPages int
	restores int
}

// NewAddrSpace creates an address space covering numPages pages.
func NewAddrSpace(numPages int) *AddrSpace {
	return &AddrSpace{numPages: numPages}
}

// NumPages returns the size of the space in pages.
func (as *AddrSpace) NumPages() int {
	return as.numPages
}

// RestoreOnSwitch reinstalls this space's mapping state. Called by the
// scheduler when a thread owning the space becomes current.
func (as *AddrSpace) RestoreOnSwitch() {
	as.restores++
	debug.Printf('m', "restoring address space (%d pages, restore %d)", as.numPages, as.restores)
}

// Restores reports how many times the space has been reinstalled.
func (as *AddrSpace) Restores() int {
	return as.restores
}
