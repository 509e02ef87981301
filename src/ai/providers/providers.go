package providers

import (
	_ "github.com/stake-plus/robot-comms/src/ai/anthropic"
	_ "github.com/stake-plus/robot-comms/src/ai/openai"
)
