// Package autoload 以空白匯入的方式註冊所有內建的 LLM Provider。
// main.go 只需要 `_ "toktok/pkg/llm/autoload"` 即可啟用全部供應商。
package autoload

import (
	_ "toktok/pkg/llm/gemini"
	_ "toktok/pkg/llm/ollama"
	_ "toktok/pkg/llm/openailm"
)
