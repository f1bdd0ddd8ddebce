package records

// Record is one untyped measurement as decoded from kube-burner JSON output
type Record map[string]any

// Marker fields emitted by kube-burner's measurement collectors. A record is
// classified by the first marker set it matches.
var (
	vmiMarkers = []string{
		"vmReadyLatency",
		"vmiCreatedLatency",
		"vmiPendingLatency",
		"vmiSchedulingLatency",
		"vmiScheduledLatency",
		"vmiRunningLatency",
	}

	dvMarkers = []string{
		"dvBoundLatency",
		"dvRunningLatency",
		"dvReadyLatency",
		"dvName",
	}

	podMarkers = []string{
		"podCreatedLatency",
		"podReadyLatency",
		"podScheduledLatency",
		"podInitializedLatency",
		"podContainersReadyLatency",
	}
)

// classificationRule pairs a marker predicate with the type it selects
type classificationRule struct {
	dataType DataType
	matches  func(Record) bool
}

// classificationRules are evaluated in declaration order and the first match
// wins. The order is the tie-break: a malformed record carrying both VMI and
// DV markers resolves to VMI.
var classificationRules = []classificationRule{
	{TypeVMILatency, hasVMIMarkers},
	{TypeDVLatency, hasDVMarkers},
	{TypePodLatency, hasPodMarkers},
}

// Classify returns the data type for a single record. A hint other than
// TypeAuto is used verbatim so callers can override misdetection. Detection
// is pure: the same record always yields the same type.
func Classify(r Record, hint DataType) DataType {
	if hint != "" && hint != TypeAuto {
		return hint
	}
	for _, rule := range classificationRules {
		if rule.matches(r) {
			return rule.dataType
		}
	}
	return TypeGeneric
}

func hasVMIMarkers(r Record) bool {
	if hasAnyField(r, vmiMarkers) {
		return true
	}
	// kube-burner reports pod latencies for virt-launcher pods with the
	// owning VM attached; those belong with the VMI measurements.
	if hasAnyField(r, podMarkers) {
		return hasAnyField(r, []string{"vmName", "vmiName"})
	}
	return false
}

func hasDVMarkers(r Record) bool {
	return hasAnyField(r, dvMarkers)
}

func hasPodMarkers(r Record) bool {
	return hasAnyField(r, podMarkers)
}

func hasAnyField(r Record, fields []string) bool {
	for _, f := range fields {
		if _, ok := r[f]; ok {
			return true
		}
	}
	return false
}
