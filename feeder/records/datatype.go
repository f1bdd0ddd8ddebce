package records

import "fmt"

// DataType identifies which latency-record shape a record carries
type DataType string

const (
	// TypeAuto requests marker-based detection instead of a fixed type
	TypeAuto DataType = "auto"

	// TypeVMILatency is kube-burner's VirtualMachineInstance latency measurement
	TypeVMILatency DataType = "vmiLatency"

	// TypeDVLatency is kube-burner's DataVolume latency measurement
	TypeDVLatency DataType = "dvLatency"

	// TypePodLatency is kube-burner's Pod latency measurement
	TypePodLatency DataType = "podLatency"

	// TypeGeneric is any record that matches no known latency shape
	TypeGeneric DataType = "generic"
)

// ParseDataType validates a user-supplied data type value
func ParseDataType(s string) (DataType, error) {
	switch t := DataType(s); t {
	case TypeAuto, TypeVMILatency, TypeDVLatency, TypePodLatency, TypeGeneric:
		return t, nil
	}
	return "", fmt.Errorf("invalid data type %q: must be auto, vmiLatency, dvLatency, podLatency, or generic", s)
}

// IndexSuffix returns the kebab-case suffix appended to the index prefix.
// Generic records carry no suffix and land in the bare prefix index.
func (t DataType) IndexSuffix() string {
	switch t {
	case TypeVMILatency:
		return "vmi-latency"
	case TypeDVLatency:
		return "dv-latency"
	case TypePodLatency:
		return "pod-latency"
	}
	return ""
}

// IndexName returns the destination index for this data type under the
// given prefix
func (t DataType) IndexName(prefix string) string {
	if suffix := t.IndexSuffix(); suffix != "" {
		return prefix + "-" + suffix
	}
	return prefix
}
