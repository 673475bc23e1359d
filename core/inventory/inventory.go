package inventory

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

const virtualMachineType = "VirtualMachine"

// VM is a virtual machine as reported by its guest tools.
type VM struct {
	// Name is the inventory name.
	Name string
	// HostName is the guest-reported host name, possibly fully qualified.
	HostName string
	// IPAddress is the guest-reported primary address, possibly empty or IPv6.
	IPAddress string
	// PowerState is the runtime power state (poweredOn, poweredOff, suspended).
	PowerState string
}

// PoweredOn reports whether the VM is running.
func (vm VM) PoweredOn() bool {
	return vm.PowerState == string(vimtypes.VirtualMachinePowerStatePoweredOn)
}

// Source enumerates virtual machines.
type Source interface {
	VirtualMachines(ctx context.Context) ([]VM, error)
}

// VSphere is a Source reading every VM below the vCenter root folder.
type VSphere struct {
	client        *vim25.Client
	poweredOnOnly bool
}

// Option configures a VSphere source.
type Option func(*VSphere)

// PoweredOnOnly skips VMs that are not running.
func PoweredOnOnly(enabled bool) Option {
	return func(v *VSphere) {
		v.poweredOnOnly = enabled
	}
}

// NewVSphere creates a VSphere source.
func NewVSphere(c *vim25.Client, opts ...Option) *VSphere {
	v := &VSphere{client: c}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VirtualMachines lists the VMs with only the properties needed to build
// DNS records.
func (v *VSphere) VirtualMachines(ctx context.Context) ([]VM, error) {
	m := view.NewManager(v.client)

	cv, err := m.CreateContainerView(ctx, v.client.ServiceContent.RootFolder, []string{virtualMachineType}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create container view: %w", err)
	}
	defer func() {
		_ = cv.Destroy(context.Background())
	}()

	var mos []mo.VirtualMachine
	if err := cv.Retrieve(ctx, []string{virtualMachineType}, []string{"name", "guest", "runtime.powerState"}, &mos); err != nil {
		return nil, fmt.Errorf("failed to retrieve virtual machines: %w", err)
	}

	return fromManagedObjects(mos, v.poweredOnOnly), nil
}

func fromManagedObjects(mos []mo.VirtualMachine, poweredOnOnly bool) []VM {
	vms := make([]VM, 0, len(mos))
	for _, o := range mos {
		vm := VM{
			Name:       o.Name,
			PowerState: string(o.Runtime.PowerState),
		}
		if o.Guest != nil {
			vm.HostName = o.Guest.HostName
			vm.IPAddress = o.Guest.IpAddress
		}
		if poweredOnOnly && !vm.PoweredOn() {
			continue
		}
		vms = append(vms, vm)
	}
	return vms
}
