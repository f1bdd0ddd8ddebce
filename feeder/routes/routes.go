// Package routes resolves OpenShift Route objects to endpoint URLs, for
// clusters where OpenSearch is exposed through a route rather than a fixed
// address.
package routes

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Route is the GVR for OpenShift Route resources
var Route = schema.GroupVersionResource{
	Group:    "route.openshift.io",
	Version:  "v1",
	Resource: "routes",
}

// Ref names a route by namespace and name
type Ref struct {
	Namespace string
	Name      string
}

// ParseRef parses a "<namespace>/<name>" route reference
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("invalid route reference %q, expected <namespace>/<name>", s)
	}
	return Ref{Namespace: parts[0], Name: parts[1]}, nil
}

func (r Ref) String() string {
	return r.Namespace + "/" + r.Name
}

// Discoverer resolves routes through the cluster API
type Discoverer struct {
	client dynamic.Interface
}

// New creates a Discoverer from the ambient cluster configuration, trying
// in-cluster credentials first and the local kubeconfig as fallback
func New() (*Discoverer, error) {
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		restConfig, err = clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load cluster configuration: %w", err)
		}
	}
	return NewForConfig(restConfig)
}

// NewForConfig creates a Discoverer for the given REST config
func NewForConfig(cfg *rest.Config) (*Discoverer, error) {
	client, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient creates a Discoverer around an existing dynamic client
func NewWithClient(client dynamic.Interface) *Discoverer {
	return &Discoverer{client: client}
}

// DiscoverURL resolves a route to an endpoint URL. Routes carrying a TLS
// configuration resolve to https, plain routes to http.
func (d *Discoverer) DiscoverURL(ctx context.Context, ref Ref) (string, error) {
	route, err := d.client.Resource(Route).Namespace(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get route %s: %w", ref, err)
	}

	host, found, err := unstructured.NestedString(route.Object, "spec", "host")
	if err != nil || !found || host == "" {
		return "", fmt.Errorf("route %s has no host", ref)
	}

	tlsConfig, found, _ := unstructured.NestedMap(route.Object, "spec", "tls")
	if found && len(tlsConfig) > 0 {
		return "https://" + host, nil
	}
	return "http://" + host, nil
}
