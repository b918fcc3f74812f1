// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package distill

import "github.com/poiesic/distillery/core"

// Stage identifies a step of the staged distillation path.
type Stage string

const (
	StageExtract    Stage = "extract"
	StageAnalyze    Stage = "analyze"
	StageEnrich     Stage = "enrich"
	StageVerify     Stage = "verify"
	StageSynthesize Stage = "synthesize"
)

// Extraction holds raw facts pulled from the content without interpretation.
// A non-empty Err means the model call failed and the fields hold heuristic
// substitutes derived from the content itself.
type Extraction struct {
	Title            string   `json:"title"`
	RawSummary       string   `json:"raw_summary"`
	DetectedURLs     []string `json:"detected_urls"`
	DetectedNames    []string `json:"detected_names"`
	DetectedVersions []string `json:"detected_versions"`
	DetectedCommands []string `json:"detected_commands"`
	DetectedFeatures []string `json:"detected_features"`
	ContentLanguage  string   `json:"content_language"`
	HasCode          bool     `json:"has_code"`
	HasDiagram       bool     `json:"has_diagram"`
	SourceHints      []string `json:"source_hints"`
	Err              string   `json:"error,omitempty"`
}

// Analysis classifies the subject of the content.
type Analysis struct {
	ContentType           string   `json:"content_type"`
	Domain                string   `json:"domain"`
	TechStack             []string `json:"tech_stack"`
	ArchitecturePattern   string   `json:"architecture_pattern"`
	ComplexityLevel       string   `json:"complexity_level"`
	TargetAudience        string   `json:"target_audience"`
	Prerequisites         []string `json:"prerequisites"`
	UseCases              []string `json:"use_cases"`
	Advantages            []string `json:"advantages"`
	Limitations           []string `json:"limitations"`
	RelatedTechnologies   []string `json:"related_technologies"`
	LearningPath          string   `json:"learning_path"`
	EstimatedLearningTime string   `json:"estimated_learning_time"`
	Err                   string   `json:"error,omitempty"`
}

// Enrichment supplies ecosystem context from the model's training knowledge.
type Enrichment struct {
	InferredGitHubURL string                  `json:"inferred_github_url"`
	InferredDocsURL   string                  `json:"inferred_docs_url"`
	InferredWebsite   string                  `json:"inferred_website"`
	FoundURLs         []string                `json:"found_urls"`
	InstallCommands   map[string]string       `json:"install_commands"`
	QuickStart        string                  `json:"quick_start"`
	RelatedResources  []core.LearningResource `json:"related_resources"`
	EcosystemTools    []string                `json:"ecosystem_tools"`
	Community         map[string]string       `json:"community"`
	Err               string                  `json:"error,omitempty"`
}

// VerifiedItem records the verdict for a single claim.
type VerifiedItem struct {
	Item   string `json:"item"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Correction records a fix the verification stage applied to a claim.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason"`
}

// Verification holds the cross-check verdict over the accumulated stages.
type Verification struct {
	Confidence          float64        `json:"confidence"`
	VerifiedItems       []VerifiedItem `json:"verified_items"`
	Corrections         []Correction   `json:"corrections"`
	Warnings            []string       `json:"warnings"`
	MissingCriticalInfo []string       `json:"missing_critical_info"`
	DataQualityScore    int            `json:"data_quality_score"`
	Recommendation      string         `json:"recommendation"`
	Err                 string         `json:"error,omitempty"`
}

// Results accumulates the outputs of the staged path. Later stages read
// the fields filled in by earlier ones.
type Results struct {
	Extraction   *Extraction
	Analysis     *Analysis
	Enrichment   *Enrichment
	Verification *Verification
}
