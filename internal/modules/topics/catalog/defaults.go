package catalog

// Seed is one curated catalog entry. Aliases are matched as whole phrases after
// normalization; Indonesian phrasings sit next to the English ones.
type Seed struct {
	Slug    string   `yaml:"slug"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Defaults is the built-in catalog, in catalog order. Order matters: a phrase listed
// under two topics belongs to the earlier one.
func Defaults() []Seed {
	return []Seed{
		{Slug: "frontend", Name: "Frontend", Aliases: []string{
			"front end", "front-end", "react", "react.js", "reactjs", "next.js", "nextjs", "vue", "vue.js",
			"nuxt", "angular", "svelte", "html", "css", "tailwind", "bootstrap", "web design", "tampilan web",
		}},
		{Slug: "backend", Name: "Backend", Aliases: []string{
			"back end", "back-end", "node.js", "nodejs", "express", "golang", "django", "flask", "laravel",
			"spring boot", "rest api", "api", "graphql", "microservices", "server", "web service",
		}},
		{Slug: "mobile", Name: "Mobile Development", Aliases: []string{
			"mobile", "android", "ios", "flutter", "react native", "kotlin", "swift", "aplikasi mobile",
			"aplikasi android",
		}},
		{Slug: "devops", Name: "DevOps", Aliases: []string{
			"dev ops", "docker", "kubernetes", "k8s", "ci/cd", "ci cd", "jenkins", "github actions",
			"terraform", "ansible", "linux", "sre",
		}},
		{Slug: "cloud", Name: "Cloud Computing", Aliases: []string{
			"cloud", "aws", "amazon web services", "gcp", "google cloud", "azure", "serverless",
			"komputasi awan",
		}},
		{Slug: "data-science", Name: "Data Science", Aliases: []string{
			"data analysis", "data analyst", "analisis data", "pandas", "numpy", "statistics", "statistika",
			"data visualization", "visualisasi data", "tableau", "power bi", "sains data",
		}},
		{Slug: "machine-learning", Name: "Machine Learning", Aliases: []string{
			"ml", "ai", "artificial intelligence", "kecerdasan buatan", "deep learning", "neural network",
			"tensorflow", "pytorch", "nlp", "computer vision", "llm", "pembelajaran mesin",
		}},
		{Slug: "database", Name: "Database", Aliases: []string{
			"sql", "mysql", "postgresql", "postgres", "mongodb", "redis", "nosql", "basis data",
			"sqlite", "data modeling",
		}},
		{Slug: "security", Name: "Cyber Security", Aliases: []string{
			"cybersecurity", "cyber security", "keamanan siber", "keamanan jaringan", "penetration testing",
			"pentest", "ethical hacking", "owasp", "kriptografi", "cryptography",
		}},
		{Slug: "programming", Name: "Programming", Aliases: []string{
			"pemrograman", "programming language", "bahasa pemrograman", "coding", "python", "java",
			"javascript", "typescript", "c++", "c#", "rust", "algorithms", "algoritma",
			"data structures", "struktur data", "oop",
		}},
		{Slug: "ui-ux-design", Name: "UI/UX Design", Aliases: []string{
			"ui", "ux", "ui/ux", "user interface", "user experience", "figma", "wireframe", "prototyping",
			"desain", "design thinking", "desain antarmuka",
		}},
		{Slug: "game-development", Name: "Game Development", Aliases: []string{
			"game dev", "gamedev", "unity", "unreal engine", "godot", "pengembangan game", "game design",
		}},
		{Slug: "product-management", Name: "Product Management", Aliases: []string{
			"product manager", "manajemen produk", "agile", "scrum", "roadmapping", "product owner",
		}},
		{Slug: "business", Name: "Business", Aliases: []string{
			"bisnis", "marketing", "pemasaran", "digital marketing", "entrepreneurship", "kewirausahaan",
			"startup", "finance", "keuangan", "akuntansi", "accounting",
		}},
		{Slug: "language", Name: "Languages", Aliases: []string{
			"bahasa inggris", "english", "bahasa jepang", "japanese", "bahasa korea", "korean",
			"bahasa mandarin", "mandarin", "toefl", "ielts", "jlpt",
		}},
		{Slug: "other", Name: "Other"},
	}
}
