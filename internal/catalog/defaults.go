package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/nuvme-configurator/internal/money"
)

var allMissions = []MissionID{
	MissionTakeoff,
	MissionModernization,
	MissionSecurity,
	MissionMigration,
	MissionFinOps,
	MissionNextGen,
}

func hours(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func defaultMissions() []Mission {
	return []Mission{
		{ID: MissionModernization, Name: "Modernization", Description: "Modernize your infrastructure and applications", Icon: "refresh-cw"},
		{ID: MissionSecurity, Name: "Security", Description: "Enhance your security posture and compliance", Icon: "shield"},
		{ID: MissionMigration, Name: "Migration", Description: "Migrate your workloads to the cloud", Icon: "move"},
		{ID: MissionFinOps, Name: "FinOps", Description: "Optimize your cloud costs and spending", Icon: "trending-down"},
		{ID: MissionNextGen, Name: "NextGen", Description: "Implement next-generation technologies", Icon: "zap"},
		{ID: MissionTakeoff, Name: "Takeoff", Description: "Account onboarding essentials", Icon: "rocket"},
	}
}

func defaultModules() []Module {
	return []Module{
		{
			ID: "cicd", Name: "CI/CD Implementation",
			Description: "Continuous Integration and Delivery pipeline setup",
			Missions:    []MissionID{MissionModernization, MissionNextGen},
			Shape:       ShapeVariable, BaseCost: money.BRL(4400),
			Variable: &Variable{Hours: hours(4), Unit: "pipelines", Min: 1, Max: 50, Default: 5},
		},
		{
			ID: "container", Name: "Application Containerization",
			Description: "Containerize existing applications",
			Missions:    []MissionID{MissionModernization, MissionMigration},
			Shape:       ShapeVariable, BaseCost: money.BRL(3800),
			Variable: &Variable{Hours: hours(6), Unit: "applications", Min: 1, Max: 100, Default: 5},
		},
		{
			ID: "gitops", Name: "GitOps Implementation",
			Description: "GitOps workflow setup and configuration",
			Missions:    []MissionID{MissionModernization, MissionSecurity, MissionNextGen},
			Shape:       ShapeVariable, BaseCost: money.BRL(4800),
			Variable: &Variable{Hours: hours(5), Unit: "repositories", Min: 1, Max: 50, Default: 10},
		},
		{
			ID: "kubernetes", Name: "Kubernetes Setup",
			Description: "Kubernetes cluster configuration and deployment",
			Missions:    []MissionID{MissionModernization, MissionMigration, MissionNextGen},
			Shape:       ShapeVariable, BaseCost: money.BRL(5200),
			Variable: &Variable{Hours: hours(18), Unit: "clusters", Min: 1, Max: 20, Default: 3},
		},
		{
			ID: "karpenter", Name: "Karpenter Implementation",
			Description: "Kubernetes autoscaling with Karpenter",
			Missions:    []MissionID{MissionModernization, MissionFinOps, MissionNextGen},
			Shape:       ShapeVariable, BaseCost: money.BRL(3600),
			Variable: &Variable{Hours: hours(6), Unit: "node pools", Min: 1, Max: 30, Default: 2},
		},
		{
			ID: "database", Name: "Managed Databases",
			Description: "Database migration, tuning and resilience",
			Missions:    []MissionID{MissionModernization, MissionMigration},
			Shape:       ShapeServiceSumBySize, BaseCost: money.BRL(3500),
			Services: []Service{
				{ID: "rds_setup", Name: "RDS setup", Price: money.BRL(4500)},
				{ID: "aurora_migration", Name: "Aurora migration", Price: money.BRL(7800)},
				{ID: "performance_tuning", Name: "Performance tuning", Price: money.BRL(3200)},
				{ID: "backup_policy", Name: "Backup policy", Price: money.BRL(1800)},
				{ID: "read_replicas", Name: "Read replicas", Price: money.BRL(2600)},
			},
		},
		{
			ID: "arquitetura", Name: "Architecture Review",
			Description: "Well-Architected review and target architecture",
			Missions:    []MissionID{MissionModernization, MissionMigration},
			Shape:       ShapeComplexityLinear, BaseCost: money.BRL(6500),
		},
		{
			ID: "serverless", Name: "Serverless",
			Description: "Event-driven workloads on managed runtimes",
			Missions:    []MissionID{MissionModernization, MissionNextGen},
			Shape:       ShapeComplexityInverted, BaseCost: money.BRL(12000),
		},
		{
			ID: "security_practices", Name: "Security Best Practices",
			Description: "Baseline hardening across accounts and workloads",
			Missions:    []MissionID{MissionSecurity},
			Shape:       ShapeComplexityLinear, BaseCost: money.BRL(7200),
		},
		{
			ID: "skyguard", Name: "SkyGuard",
			Description: "Managed security services bundle",
			Missions:    []MissionID{MissionSecurity},
			Shape:       ShapeServiceCount, BaseCost: money.BRL(9800),
			PerServiceCost: money.BRL(5500),
			Services: []Service{
				{ID: "waf", Name: "AWS WAF"},
				{ID: "guardduty", Name: "GuardDuty"},
				{ID: "security_hub", Name: "Security Hub"},
				{ID: "access_analyzer", Name: "IAM Access Analyzer"},
				{ID: "secrets_manager", Name: "Secrets Manager"},
				{ID: "kms", Name: "KMS"},
				{ID: "cloudtrail", Name: "CloudTrail"},
				{ID: "acm", Name: "Certificate Manager"},
			},
		},
		{
			ID: "security_hub", Name: "Security Hub",
			Description: "Centralized security findings and standards",
			Missions:    []MissionID{MissionSecurity},
			Shape:       ShapeComplexityLinear, BaseCost: money.BRL(5400),
		},
		{
			ID: "disaster_recovery", Name: "Disaster Recovery",
			Description: "Backup, replication and recovery runbooks",
			Missions:    []MissionID{MissionSecurity, MissionMigration},
			Shape:       ShapeComplexityLinear, BaseCost: money.BRL(8600),
		},
		{
			ID: "conta_cofre", Name: "Vault Account",
			Description: "Isolated log archive and backup account",
			Missions:    []MissionID{MissionSecurity},
			Shape:       ShapeComplexityLinear, BaseCost: money.BRL(4900),
		},
		{
			ID: "on_premises", Name: "On-Premises Migration",
			Description: "Lift and shift of on-premises servers",
			Missions:    []MissionID{MissionMigration},
			Shape:       ShapeVariable, BaseCost: money.BRL(12000),
			Variable: &Variable{Hours: hours(16), Unit: "servers", Min: 1, Max: 200, Default: 10},
		},
		{
			ID: "cloud", Name: "Cloud-to-Cloud Migration",
			Description: "Move workloads from another cloud provider",
			Missions:    []MissionID{MissionMigration},
			Shape:       ShapeVariable, BaseCost: money.BRL(9500),
			Variable: &Variable{Hours: hours(12), Unit: "workloads", Min: 1, Max: 100, Default: 5},
		},
		{
			ID: "reducao_custos", Name: "Cost Reduction",
			Description: "Rightsizing and commitment analysis",
			Missions:    []MissionID{MissionFinOps},
			Shape:       ShapeVariable, BaseCost: money.BRL(3900),
			Variable: &Variable{Hours: hours(3), Unit: "accounts", Min: 1, Max: 50, Default: 3},
		},
		{
			ID: "finops_avancado", Name: "Advanced FinOps",
			Description: "Showback, budgets and unit economics",
			Missions:    []MissionID{MissionFinOps},
			Shape:       ShapeVariable, BaseCost: money.BRL(6200),
			Variable: &Variable{Hours: hours(5), Unit: "accounts", Min: 1, Max: 50, Default: 3},
		},
		{
			ID: "observability", Name: "Observability",
			Description: "Metrics, logs and traces with actionable alerts",
			Missions:    []MissionID{MissionNextGen},
			Shape:       ShapeComplexityInverted, BaseCost: money.BRL(15000),
		},
		{
			ID: "ia", Name: "Generative AI",
			Description: "Generative AI assistants on managed models",
			Missions:    []MissionID{MissionNextGen},
			Shape:       ShapeComplexityInverted, BaseCost: money.BRL(18000),
		},
		{
			ID: "ml", Name: "Machine Learning",
			Description: "Training and serving pipelines for ML models",
			Missions:    []MissionID{MissionNextGen},
			Shape:       ShapeComplexityInverted, BaseCost: money.BRL(22000),
		},
		{
			ID: "ia_lab", Name: "AI Lab",
			Description: "Discovery workshop to prototype AI use cases",
			Missions:    []MissionID{MissionNextGen},
			Shape:       ShapeFlat, BaseCost: money.BRL(8000),
		},
		{
			ID: "faturamento", Name: "Billing Setup",
			Description: "Consolidated billing and invoicing through Nuvme",
			Missions:    allMissions,
			Shape:       ShapeFlat, BaseCost: money.BRL(1500),
		},
		{
			ID: "painel_nuvme", Name: "Nuvme Dashboard",
			Description: "Access to the Nuvme cost and health dashboard",
			Missions:    allMissions,
			Shape:       ShapeFlat, BaseCost: money.BRL(2400),
		},
	}
}

func defaultPlans() []Plan {
	return []Plan{
		{ID: PlanTogether, Name: "Together", Description: "Shared support for teams starting on the cloud", MonthlyPrice: money.BRL(1490), SetupPrice: money.BRL(3000), IncludedModules: 1},
		{ID: PlanEssential, Name: "Essential", Description: "Stable base with reactive support and alerts", MonthlyPrice: money.BRL(2990), SetupPrice: money.BRL(6000), IncludedModules: 2},
		{ID: PlanAdvanced, Name: "Advanced", Description: "Co-managed operations with a dedicated DevOps squad", MonthlyPrice: money.BRL(7900), SetupPrice: money.BRL(9000), IncludedModules: 3},
		{ID: PlanPremier, Name: "Premier", Description: "Strategic partnership with executive tracking", MonthlyPrice: money.BRL(14900), SetupPrice: money.BRL(12000), IncludedModules: 4},
	}
}
