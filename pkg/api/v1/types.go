package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type ScanSpec struct {
	// Root is the directory containing package archives.
	Root         string   `json:"root,omitempty"`
	Type         string   `json:"type,omitempty"`
	Arch         string   `json:"arch,omitempty"`
	Multiversion bool     `json:"multiversion,omitempty"`
	Prefix       string   `json:"prefix,omitempty"`
	Output       string   `json:"output,omitempty"`
	Compress     []string `json:"compress,omitempty"`
	FailOnSkip   bool     `json:"failOnSkip,omitempty"`
}

type ScanConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ScanSpec `json:"spec"`
}
