// Package config defines the single immutable configuration record handed
// by reference to every worker, mirroring the teacher's internal/cli.Config
// shape: a nested struct tree loaded from YAML with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of options the core pipeline observes. It is
// loaded once, then passed by pointer and never mutated.
type Config struct {
	Thread int `yaml:"thread"`

	Split struct {
		Enabled        bool `yaml:"enabled"`
		ByFileLines    int  `yaml:"by_file_lines"`
		Number         int  `yaml:"number"`
		Size           int  `yaml:"size"`
		NeedEvaluation bool `yaml:"need_evaluation"` // accepted, not implemented — see DESIGN.md
	} `yaml:"split"`

	Input         string `yaml:"input"`
	FailedOut     string `yaml:"failed_out"`
	Out1          string `yaml:"out1"`
	OutReadsKOMap string `yaml:"out_reads_ko_map"`

	// OutputReadsAnnoMap is accepted for config compatibility but is not
	// the gate on writing the reads->KO-map lines: that is driven solely by
	// OutReadsKOMap's presence (see internal/worker.processRecord), so a
	// configured KO-map sink is never left empty by an unset flag here.
	OutputReadsAnnoMap bool `yaml:"output_reads_anno_map"`
	ReadsToProcess     int  `yaml:"reads_to_process"`
	Verbose            bool `yaml:"verbose"`
	Phred64            bool `yaml:"phred64"`
	FastqBufferSize    int  `yaml:"fastq_buffer_size"`
	OutputToSTDOUT     bool `yaml:"output_to_stdout"`

	IndexFilter struct {
		Enabled bool     `yaml:"enabled"`
		Indices []string `yaml:"indices"`
	} `yaml:"index_filter"`

	FixMGI bool `yaml:"fix_mgi"`

	UMI struct {
		Enabled bool `yaml:"enabled"`
		Length  int  `yaml:"length"`
	} `yaml:"umi"`

	Trim struct {
		Front1  int `yaml:"front1"`
		Tail1   int `yaml:"tail1"`
		MaxLen1 int `yaml:"max_len1"`

		WindowSize        int     `yaml:"window_size"`
		MeanQualityCutoff float64 `yaml:"mean_quality_cutoff"`
	} `yaml:"trim"`

	PolyGTrim struct {
		Enabled bool `yaml:"enabled"`
		MinLen  int  `yaml:"min_len"`
	} `yaml:"poly_g_trim"`

	Adapter struct {
		Enabled     bool     `yaml:"enabled"`
		HasSeqR1    bool     `yaml:"has_seq_r1"`
		Sequence    string   `yaml:"sequence"`
		HasFasta    bool     `yaml:"has_fasta"`
		SeqsInFasta []string `yaml:"seqs_in_fasta"`
		PolyA       bool     `yaml:"poly_a"`
	} `yaml:"adapter"`

	PolyXTrim struct {
		Enabled bool `yaml:"enabled"`
		MinLen  int  `yaml:"min_len"`
	} `yaml:"poly_x_trim"`

	Duplicate struct {
		Enabled  bool `yaml:"enabled"`
		HistSize int  `yaml:"hist_size"`
	} `yaml:"duplicate"`

	Filter struct {
		MinLength   int     `yaml:"min_length"`
		MaxLength   int     `yaml:"max_length"`
		MinMeanQual float64 `yaml:"min_mean_qual"`
		MaxNRate    float64 `yaml:"max_n_rate"`
	} `yaml:"filter"`

	MHomoSearchOptions struct {
		Prefix         string `yaml:"prefix"`
		Profiling      bool   `yaml:"profiling"`
		NTotalReads    int64  `yaml:"n_total_reads"`
		NCleanReads    int64  `yaml:"n_clean_reads"`
		FullDBMap      string `yaml:"full_db_map"`
		DictionaryPath string `yaml:"dictionary_path"`
		SeedLen        int    `yaml:"seed_len"`
	} `yaml:"m_homo_search_options"`

	Samples []string `yaml:"samples"`

	TransSearch struct {
		StartTime time.Time `yaml:"start_time"`
	} `yaml:"trans_search"`

	MetricsPort int `yaml:"metrics_port"`

	// Demux-variant fields. Absent/zero for the primary pipeline.
	Demux struct {
		Enabled       bool     `yaml:"enabled"`
		SubsetTargets []string `yaml:"subset_targets"`
		FullTargets   []string `yaml:"full_targets"`
		OutPrefix     string   `yaml:"out_prefix"`
	} `yaml:"demux"`
}

// Load reads and parses a YAML config file, applying defaults to the fields
// applyDefaults covers when they are left unset; other fields keep their
// zero values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Thread <= 0 {
		c.Thread = 4
	}
	if c.Trim.WindowSize <= 0 {
		c.Trim.WindowSize = 4
	}
	if c.Trim.MeanQualityCutoff <= 0 {
		c.Trim.MeanQualityCutoff = 20
	}
	if c.Filter.MinLength <= 0 {
		c.Filter.MinLength = 30
	}
	if c.PolyGTrim.MinLen <= 0 {
		c.PolyGTrim.MinLen = 10
	}
	if c.PolyXTrim.MinLen <= 0 {
		c.PolyXTrim.MinLen = 10
	}
	if c.Duplicate.HistSize <= 0 {
		c.Duplicate.HistSize = 1 << 16
	}
	if c.MHomoSearchOptions.SeedLen <= 0 {
		c.MHomoSearchOptions.SeedLen = 18
	}
}

// Validate checks the fatal-at-entry configuration errors spec §7 names:
// missing sample prefix and an empty input path. Whether the input is
// readable is only discovered when the reader opens it.
func (c *Config) Validate() error {
	if c.MHomoSearchOptions.Prefix == "" {
		return fmt.Errorf("config: sample prefix (m_homo_search_options.prefix) is required")
	}
	if c.Input == "" {
		return fmt.Errorf("config: input path is required")
	}
	return nil
}
