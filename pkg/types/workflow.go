// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research assistant.
package types

// DefaultPaperLimit is the corpus size a workflow run works over when the
// caller does not choose.
const DefaultPaperLimit = 20

// Cluster is one topical grouping of papers produced by the clustering
// stage of a workflow run. Write-once per run.
type Cluster struct {
	// Label is a short name for the cluster.
	Label string `json:"label" yaml:"label"`

	// PaperIDs lists the internal ids of the member papers.
	PaperIDs []int64 `json:"paper_ids" yaml:"paper_ids"`

	// Rationale explains, in one to three sentences, why these papers
	// belong together.
	Rationale string `json:"rationale" yaml:"rationale"`
}

// ClusterSummary is the structured summary of one cluster.
type ClusterSummary struct {
	// ClusterLabel names the summarized cluster.
	ClusterLabel string `json:"cluster_label" yaml:"cluster_label"`

	// KeyPoints holds at most eight key findings.
	KeyPoints []string `json:"key_points" yaml:"key_points"`

	// RepresentativePapers holds citation strings, "Title (arXiv:id)"
	// when an arXiv id is known.
	RepresentativePapers []string `json:"representative_papers" yaml:"representative_papers"`

	// Limitations holds at most four limitations.
	Limitations []string `json:"limitations" yaml:"limitations"`
}

// Hypothesis is a testable, falsifiable hypothesis derived from cluster
// summaries.
type Hypothesis struct {
	// Text is the hypothesis statement.
	Text string `json:"text" yaml:"text"`

	// SupportingPapers lists citation strings for the supporting work.
	SupportingPapers []string `json:"supporting_papers" yaml:"supporting_papers"`
}

// ExperimentPlan is a concrete plan for testing one hypothesis.
type ExperimentPlan struct {
	// HypothesisText is the exact text of the hypothesis the plan tests.
	HypothesisText string `json:"hypothesis_text" yaml:"hypothesis_text"`

	// Steps holds at most eight ordered steps.
	Steps []string `json:"steps" yaml:"steps"`

	// Datasets holds at most four candidate datasets.
	Datasets []string `json:"datasets" yaml:"datasets"`

	// Metrics holds at most four evaluation metrics.
	Metrics []string `json:"metrics" yaml:"metrics"`

	// Risks holds at most four identified risks.
	Risks []string `json:"risks" yaml:"risks"`
}

// RunResult bundles everything one workflow run produced.
type RunResult struct {
	// RunID is the unique token identifying this run.
	RunID string `json:"run_id" yaml:"run_id"`

	Clusters   []Cluster        `json:"clusters" yaml:"clusters"`
	Summaries  []ClusterSummary `json:"summaries" yaml:"summaries"`
	Hypotheses []Hypothesis     `json:"hypotheses" yaml:"hypotheses"`
	Plans      []ExperimentPlan `json:"plans" yaml:"plans"`

	// Logs is the human-readable trail, one line per milestone or
	// failure encountered during the run.
	Logs []string `json:"logs" yaml:"logs"`
}
