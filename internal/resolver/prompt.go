package resolver

import (
	"fmt"
	"strconv"

	"github.com/claude/gymchat/internal/models"
)

const systemPrompt = `你是一个专业的健身教练AI助手。你的任务是分析用户的对话，并从中提取结构化的健身记录。
当用户描述一个训练动作时，你需要识别出以下关键信息：
- action (动作名称): 字符串
- sets (组数): 数字, 如果未提及，默认为 1
- reps (次数): 数字
- weight (负重, 单位kg): 数字, 如果未提及，默认为 0

你的回复必须遵循以下规则：
1. 如果用户的输入是有效的健身记录，你只能回复一个JSON对象，格式如下：
   {"type": "log", "data": {"action": "动作名称", "sets": 1, "reps": 10, "weight": 50}}
2. 如果用户想查看训练汇总或报告，回复：
   {"type": "summary", "data": {"period": "today|week|month|quarter"}}
3. 如果用户的输入不是健身记录也不是汇总请求（例如打招呼、问问题），回复：
   {"type": "chat", "data": "这是对用户非记录性输入的常规回复"}
4. 不要在JSON之外添加任何额外的文字、解释或注释。`

// buildPrompt returns the system instruction, extended with inheritance rules
// when a previous record is known.
func buildPrompt(last *models.Record) string {
	if last == nil {
		return systemPrompt
	}
	return systemPrompt + fmt.Sprintf(`

这是用户上一次的训练记录:
- 动作: %s
- 重量: %skg
- 次数: %d

现在，请根据这个上下文处理用户的最新输入。规则如下：
1. 如果用户只提供次数（例如“我又做了15个”或直接输入“15”），你应该使用上一次的动作和重量，只更新次数。
2. 如果用户提供了新的重量和次数（例如“20公斤 12个”），你应该使用上一次的动作，但更新重量和次数。
3. 如果用户提供了全新的完整记录（例如“弯举 5组x10次@30kg”），则忽略上一次的记录，直接解析新记录。`,
		last.Action, strconv.FormatFloat(last.Weight, 'f', -1, 64), last.Reps)
}
