package records

import "testing"

func TestClassify_VMIMarkers(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"vmReadyLatency", Record{"vmReadyLatency": 120.0}},
		{"vmiCreatedLatency", Record{"vmiCreatedLatency": 5.0}},
		{"vmiPendingLatency", Record{"vmiPendingLatency": 1.0}},
		{"vmiSchedulingLatency", Record{"vmiSchedulingLatency": 2.0}},
		{"vmiScheduledLatency", Record{"vmiScheduledLatency": 3.0}},
		{"vmiRunningLatency", Record{"vmiRunningLatency": 90.0}},
		{"pod latency on a VM pod", Record{"podReadyLatency": 10.0, "vmName": "vm-1"}},
		{"pod latency with vmiName", Record{"podCreatedLatency": 4.0, "vmiName": "vmi-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.record, TypeAuto); got != TypeVMILatency {
				t.Errorf("expected %s, got %s", TypeVMILatency, got)
			}
		})
	}
}

func TestClassify_VMIWinsOverDV(t *testing.T) {
	// Malformed record carrying both marker sets resolves by rule order.
	record := Record{
		"vmReadyLatency": 120.0,
		"dvReadyLatency": 30.0,
		"dvName":         "dv-1",
	}

	if got := Classify(record, TypeAuto); got != TypeVMILatency {
		t.Errorf("expected %s, got %s", TypeVMILatency, got)
	}
}

func TestClassify_DVMarkers(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"dvBoundLatency", Record{"dvBoundLatency": 12.0}},
		{"dvRunningLatency", Record{"dvRunningLatency": 13.0}},
		{"dvReadyLatency", Record{"dvReadyLatency": 14.0}},
		{"dvName", Record{"dvName": "dv-1"}},
		{"dv with unrelated fields", Record{"dvReadyLatency": 14.0, "namespace": "ns-1", "metricName": "dvLatencyMeasurement"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.record, TypeAuto); got != TypeDVLatency {
				t.Errorf("expected %s, got %s", TypeDVLatency, got)
			}
		})
	}
}

func TestClassify_PodMarkers(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"podCreatedLatency", Record{"podCreatedLatency": 1.0}},
		{"podReadyLatency", Record{"podReadyLatency": 2.0}},
		{"podScheduledLatency", Record{"podScheduledLatency": 3.0}},
		{"podInitializedLatency", Record{"podInitializedLatency": 4.0}},
		{"podContainersReadyLatency", Record{"podContainersReadyLatency": 5.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.record, TypeAuto); got != TypePodLatency {
				t.Errorf("expected %s, got %s", TypePodLatency, got)
			}
		})
	}
}

func TestClassify_Generic(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"empty record", Record{}},
		{"no markers", Record{"metricName": "jobSummary", "uuid": "abc", "elapsedTime": 300.0}},
		{"podName alone is not a marker", Record{"podName": "pod-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.record, TypeAuto); got != TypeGeneric {
				t.Errorf("expected %s, got %s", TypeGeneric, got)
			}
		})
	}
}

func TestClassify_ExplicitHint(t *testing.T) {
	record := Record{"vmReadyLatency": 120.0}

	// An explicit hint bypasses marker inspection entirely.
	if got := Classify(record, TypeDVLatency); got != TypeDVLatency {
		t.Errorf("expected hint %s to win, got %s", TypeDVLatency, got)
	}
	if got := Classify(record, TypeGeneric); got != TypeGeneric {
		t.Errorf("expected hint %s to win, got %s", TypeGeneric, got)
	}

	// Auto and empty hints fall through to detection.
	if got := Classify(record, TypeAuto); got != TypeVMILatency {
		t.Errorf("expected detection under auto hint, got %s", got)
	}
	if got := Classify(record, ""); got != TypeVMILatency {
		t.Errorf("expected detection under empty hint, got %s", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	record := Record{
		"vmReadyLatency":  120.0,
		"dvReadyLatency":  30.0,
		"podReadyLatency": 10.0,
		"vmName":          "vm-1",
	}

	first := Classify(record, TypeAuto)
	for i := 0; i < 100; i++ {
		if got := Classify(record, TypeAuto); got != first {
			t.Fatalf("classification changed between runs: %s then %s", first, got)
		}
	}
}
