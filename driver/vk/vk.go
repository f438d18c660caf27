// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo

// Package vk implements driver interfaces using the Vulkan API.
// It resolves the native entry points once, at Open time, and
// exposes only the typed operations the engine calls.
package vk

import (
	"errors"
	"log"

	vk "github.com/goki/vulkan"

	"prerot/driver"
	"prerot/wsi"
)

const driverName = "vulkan"

func init() {
	driver.Register(&drv)
}

var drv Driver

// Driver implements driver.Driver.
type Driver struct {
	inst vk.Instance
	dev  *Device
}

// Open initializes the driver: the loader, the instance, a
// suitable physical device and one graphics queue.
// If the driver is already open, Open returns the same
// Device.
func (d *Driver) Open() (driver.Device, error) {
	if d.dev != nil {
		return d.dev, nil
	}
	if err := d.initInstance(); err != nil {
		d.Close()
		return nil, err
	}
	dev, err := d.initDevice()
	if err != nil {
		d.Close()
		return nil, err
	}
	d.dev = dev
	return dev, nil
}

// Name returns the name of the driver.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d.dev != nil {
		d.dev.Destroy()
		d.dev = nil
	}
	if d.inst != nil {
		vk.DestroyInstance(d.inst, nil)
		d.inst = nil
	}
}

// initInstance loads the Vulkan entry points and creates
// the instance with the surface extensions the window
// system requires.
func (d *Driver) initInstance() error {
	proc := wsi.VulkanProcAddr()
	if proc == nil {
		return driver.ErrNotInstalled
	}
	vk.SetGetInstanceProcAddr(proc)
	if err := vk.Init(); err != nil {
		return errors.Join(driver.ErrNotInstalled, err)
	}

	exts := instanceExts()
	var inst vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:            vk.StructureTypeApplicationInfo,
			ApiVersion:       vk.MakeVersion(1, 1, 0),
			PApplicationName: safeString(wsi.AppName()),
			PEngineName:      "prerot\x00",
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
	}, nil, &inst)
	if err := checkResult(ret); err != nil {
		return err
	}
	vk.InitInstance(inst)
	d.inst = inst
	return nil
}

// instanceExts returns the null-terminated instance
// extension names that presentation requires, as reported
// by an existing window.
func instanceExts() []string {
	for _, win := range wsi.Windows() {
		if src, ok := win.(wsi.SurfaceSource); ok {
			return safeStrings(src.InstanceExtensions())
		}
	}
	return safeStrings([]string{"VK_KHR_surface"})
}

// initDevice selects the first physical device exposing a
// graphics queue family and creates a logical device with
// one queue from it.
func (d *Driver) initDevice() (*Device, error) {
	var n uint32
	if err := checkResult(vk.EnumeratePhysicalDevices(d.inst, &n, nil)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, driver.ErrNoDevice
	}
	gpus := make([]vk.PhysicalDevice, n)
	if err := checkResult(vk.EnumeratePhysicalDevices(d.inst, &n, gpus)); err != nil {
		return nil, err
	}

	gpu := gpus[0]
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	log.Printf("vk: using device %q", vk.ToString(props.DeviceName[:]))

	var qn uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &qn, nil)
	if qn == 0 {
		return nil, driver.ErrNoDevice
	}
	qprops := make([]vk.QueueFamilyProperties, qn)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &qn, qprops)
	qfam := qn
	for i := range qprops {
		qprops[i].Deref()
		if qprops[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			qfam = uint32(i)
			break
		}
	}
	if qfam == qn {
		return nil, driver.ErrNoDevice
	}

	var ldev vk.Device
	ret := vk.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: qfam,
			QueueCount:       1,
			PQueuePriorities: []float32{1},
		}},
		EnabledExtensionCount:   1,
		PpEnabledExtensionNames: safeStrings([]string{"VK_KHR_swapchain"}),
	}, nil, &ldev)
	if err := checkResult(ret); err != nil {
		return nil, err
	}

	var queue vk.Queue
	vk.GetDeviceQueue(ldev, qfam, 0, &queue)

	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &memProps)
	memProps.Deref()

	dev := &Device{
		drv:      d,
		gpu:      gpu,
		dev:      ldev,
		queue:    queue,
		qfam:     qfam,
		memProps: memProps,
	}
	var pool vk.CommandPool
	ret = vk.CreateCommandPool(ldev, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: qfam,
	}, nil, &pool)
	if err := checkResult(ret); err != nil {
		vk.DestroyDevice(ldev, nil)
		return nil, err
	}
	dev.cmdPool = pool
	return dev, nil
}

// Device implements driver.Device on one logical device and
// one graphics queue.
type Device struct {
	drv      *Driver
	gpu      vk.PhysicalDevice
	dev      vk.Device
	queue    vk.Queue
	qfam     uint32
	memProps vk.PhysicalDeviceMemoryProperties
	cmdPool  vk.CommandPool

	// The single presentation surface, set by NewSurface.
	surf *Surface
}

// Destroy releases the logical device.
// The caller must have destroyed every surface, swapchain
// and sync object first.
func (d *Device) Destroy() {
	if d.dev == nil {
		return
	}
	vk.DeviceWaitIdle(d.dev)
	if d.cmdPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.dev, d.cmdPool, nil)
		d.cmdPool = vk.NullCommandPool
	}
	vk.DestroyDevice(d.dev, nil)
	d.dev = nil
	if d.drv != nil {
		d.drv.dev = nil
	}
}

// Submit enqueues cb on the device queue, waiting on wait
// at the color output stage and signaling signal and fence
// on completion.
func (d *Device) Submit(cb driver.CmdBuffer, wait, signal driver.Semaphore, fen driver.Fence) error {
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.(*semaphore).sem},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.(*cmdBuffer).cb},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal.(*semaphore).sem},
	}
	return checkResult(vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{info}, fen.(*fence).f))
}

// WaitIdle blocks until the device completes all
// outstanding work.
func (d *Device) WaitIdle() error {
	return checkResult(vk.DeviceWaitIdle(d.dev))
}

// safeString null-terminates s for C interop.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = safeString(s)
	}
	return out
}

// findMemoryType returns the index of a memory type in
// typeBits with the given properties.
func (d *Device) findMemoryType(typeBits uint32, props vk.MemoryPropertyFlagBits) (uint32, bool) {
	for i := uint32(0); i < d.memProps.MemoryTypeCount; i++ {
		mt := d.memProps.MemoryTypes[i]
		mt.Deref()
		if typeBits&(1<<i) != 0 && mt.PropertyFlags&vk.MemoryPropertyFlags(props) == vk.MemoryPropertyFlags(props) {
			return i, true
		}
	}
	return 0, false
}
