package lint

// defaultLanguages is the recognized code fence language set. It covers
// the tags highlight.js and Chroma both understand plus the plain-text
// aliases that show up in real corpora. Config can extend it.
var defaultLanguages = []string{
	"bash", "sh", "shell", "zsh", "console",
	"c", "cpp", "csharp", "objective-c",
	"css", "scss", "less",
	"diff", "patch",
	"dockerfile", "docker",
	"env", "dotenv", "ini", "toml",
	"go", "golang",
	"graphql", "proto", "protobuf",
	"hcl", "terraform",
	"html", "xml", "svg",
	"http",
	"java", "kotlin", "swift",
	"javascript", "js", "jsx",
	"typescript", "ts", "tsx",
	"json", "jsonc", "json5",
	"makefile", "make",
	"markdown", "md",
	"mermaid",
	"nginx",
	"php",
	"plaintext", "text", "txt",
	"prisma",
	"python", "py",
	"ruby", "rb",
	"rust",
	"sql", "postgresql", "sqlite",
	"yaml", "yml",
}
