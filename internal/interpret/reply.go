package interpret

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/gymchat/internal/command"
	"github.com/claude/gymchat/internal/models"
	"github.com/claude/gymchat/internal/summary"
)

// Outcome classifies a Reply.
type Outcome string

const (
	OutcomeEmpty             Outcome = "empty"
	OutcomeLogged            Outcome = "logged"
	OutcomeCommand           Outcome = "command"
	OutcomeSummary           Outcome = "summary"
	OutcomeChat              Outcome = "chat"
	OutcomeIncomplete        Outcome = "incomplete"
	OutcomeUnavailable       Outcome = "unavailable"
	OutcomeNothingToUndo     Outcome = "nothing_to_undo"
	OutcomePersistenceFailed Outcome = "persistence_failed"
)

// Reply is the result of one interpretation. Record is set only when a
// record was written.
type Reply struct {
	Text    string         `json:"text"`
	Outcome Outcome        `json:"outcome"`
	Record  *models.Record `json:"record,omitempty"`
}

const (
	introText = "我是你的健身记录助手。直接告诉我你练了什么，比如 \"深蹲 100kg 8\"，" +
		"我会帮你记下每一组，并随时为你统计今天、本周、本月或本季度的训练情况。"
	incompleteText        = "抱歉，我没能完全理解您的训练记录，可以请您说得更具体一点吗？"
	unavailablePrefix     = "抱歉，AI服务暂时出现了一点问题，请稍后再试。\n错误: "
	chatFallbackText      = "我正在学习中，暂时还不太明白。"
	nothingToUndoText     = "没有可以撤回的记录。"
	persistenceFailedText = "抱歉，保存或读取训练记录失败了，本次操作没有生效，请稍后再试。"
	endSessionPrefix      = "训练结束，辛苦了！\n"
)

func helpText() string {
	var b strings.Builder
	b.WriteString("可以这样记录训练:\n")
	b.WriteString("- 深蹲 100kg 8  (动作 重量 次数)\n")
	b.WriteString("- 引体向上 10  (动作 次数)\n")
	b.WriteString("- 120kg 12  (沿用上一个动作)\n")
	b.WriteString("- 10  (沿用上一个动作和重量)\n")
	b.WriteString("也可以问 \"这周练了多少\" 查看统计。\n")
	fmt.Fprintf(&b, "撤回上一条: %s\n", strings.Join(command.Keywords(models.CommandUndo), " / "))
	fmt.Fprintf(&b, "结束训练: %s", strings.Join(command.Keywords(models.CommandEndSession), " / "))
	return b.String()
}

func confirmationText(r models.Record) string {
	return fmt.Sprintf("记录成功: %s %skg %d次.\n💪 这是您今天完成的第 %d 组 %s.",
		r.Action, formatWeight(r.Weight), r.Reps, r.Sets, r.Action)
}

func hintText(r models.Record) string {
	return fmt.Sprintf("\n💡 小提示: 同一动作的下一组，只需发送次数（如 \"%d\"）或重量和次数（如 \"%skg %d\"）。",
		r.Reps, formatWeight(r.Weight), r.Reps)
}

func undoneText(r models.Record) string {
	return fmt.Sprintf("已撤回: %s %skg %d次.", r.Action, formatWeight(r.Weight), r.Reps)
}

func unavailableReply(err error) Reply {
	return Reply{Text: unavailablePrefix + err.Error(), Outcome: OutcomeUnavailable}
}

func incompleteReply() Reply {
	return Reply{Text: incompleteText, Outcome: OutcomeIncomplete}
}

func chatReply(text string) Reply {
	if strings.TrimSpace(text) == "" {
		text = chatFallbackText
	}
	return Reply{Text: text, Outcome: OutcomeChat}
}

func summaryText(s models.PeriodSummary) string {
	label := s.Period.Label()
	if s.TotalSets == 0 {
		return fmt.Sprintf("%s还没有训练记录。", label)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s训练总结: 共 %d 组, 总容量 %skg", label, s.TotalSets, formatWeight(s.TotalVolume))
	for _, line := range summary.Ordered(s) {
		fmt.Fprintf(&b, "\n- %s: %d 组, %d 次, 容量 %skg, 最大重量 %skg",
			line.Action, line.Sets, line.TotalReps, formatWeight(line.TotalVolume), formatWeight(line.MaxWeight))
	}
	return b.String()
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
