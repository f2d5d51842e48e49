package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// InclusionReportRender 定義輸出行為
type InclusionReportRender interface {
	Write(w io.Writer, r *InclusionReport) error
}

// Json渲染
type JsonInclusionReportRender struct{}

func (jr *JsonInclusionReportRender) Write(w io.Writer, r *InclusionReport) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLInclusionReportRender struct{}

func (yr *YAMLInclusionReportRender) Write(w io.Writer, r *InclusionReport) error {
	// 只有「純量組成的一維陣列」輸出成 flow style：[..., ...]；
	// 由 mapping 組成的陣列（例如 units）維持 block 展開。
	return forceReadableList(w, r)
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 自頂向下調整所有 sequence node 的 style：
	// - 若該 sequence 只含純量，代表它是最內層的一維 => 用 flow style: [...]
	// - 否則保持預設 block（展開）
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		// 先判斷這個 sequence 是否包含非純量子節點（代表外層維度）
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind != yaml.ScalarNode {
				hasChildSeq = true
				break
			}
		}

		// 先遞迴處理子節點（讓最內層先被標記成 flow）
		for _, c := range n.Content {
			styleReadableSequences(c)
		}

		// 最內層一維（或本身就是一維）=> flow style: [a, b, c]
		// 外層維度 => 保持預設 block style（不強制設定 style）
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
		return

	default:
		// Scalar / Alias 等不處理
		return
	}
}
