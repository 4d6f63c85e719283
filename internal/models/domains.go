package models

import "strconv"

// Domain is one of the eight CISSP body-of-knowledge domains.
type Domain struct {
	ID               int         `json:"id"`
	DomainNumber     int         `json:"domain_number"`
	Name             string      `json:"name"`
	WeightPercentage int         `json:"weight_percentage"`
	Subdomains       []Subdomain `json:"subdomains"`
}

type Subdomain struct {
	ID              int    `json:"id"`
	SubdomainNumber string `json:"subdomain_number"`
	Title           string `json:"title"`
	DomainID        int    `json:"domain_id"`
}

// NumDomains is the fixed size of the CISSP domain taxonomy.
const NumDomains = 8

// CISSPDomains is the static CISSP taxonomy used for categorizing and
// filtering questions and for backfilling domain stats.
var CISSPDomains = []Domain{
	{
		ID: 1, DomainNumber: 1, Name: "Security and Risk Management", WeightPercentage: 15,
		Subdomains: []Subdomain{
			{ID: 11, SubdomainNumber: "1.1", Title: "Understand professional ethics", DomainID: 1},
			{ID: 12, SubdomainNumber: "1.2", Title: "Understand security concepts", DomainID: 1},
			{ID: 13, SubdomainNumber: "1.3", Title: "Evaluate and apply security governance", DomainID: 1},
			{ID: 14, SubdomainNumber: "1.4", Title: "Understand legal and regulatory issues", DomainID: 1},
			{ID: 15, SubdomainNumber: "1.5", Title: "Understand risk management", DomainID: 1},
		},
	},
	{
		ID: 2, DomainNumber: 2, Name: "Asset Security", WeightPercentage: 10,
		Subdomains: []Subdomain{
			{ID: 21, SubdomainNumber: "2.1", Title: "Identify and classify assets", DomainID: 2},
			{ID: 22, SubdomainNumber: "2.2", Title: "Establish information handling requirements", DomainID: 2},
			{ID: 23, SubdomainNumber: "2.3", Title: "Provision resources securely", DomainID: 2},
			{ID: 24, SubdomainNumber: "2.4", Title: "Manage data lifecycle", DomainID: 2},
		},
	},
	{
		ID: 3, DomainNumber: 3, Name: "Security Architecture and Engineering", WeightPercentage: 13,
		Subdomains: []Subdomain{
			{ID: 31, SubdomainNumber: "3.1", Title: "Research security models", DomainID: 3},
			{ID: 32, SubdomainNumber: "3.2", Title: "Select controls based on requirements", DomainID: 3},
			{ID: 33, SubdomainNumber: "3.3", Title: "Understand security capabilities", DomainID: 3},
			{ID: 34, SubdomainNumber: "3.4", Title: "Assess security architectures", DomainID: 3},
		},
	},
	{
		ID: 4, DomainNumber: 4, Name: "Communication and Network Security", WeightPercentage: 13,
		Subdomains: []Subdomain{
			{ID: 41, SubdomainNumber: "4.1", Title: "Apply secure network architecture", DomainID: 4},
			{ID: 42, SubdomainNumber: "4.2", Title: "Secure network components", DomainID: 4},
			{ID: 43, SubdomainNumber: "4.3", Title: "Implement secure channels", DomainID: 4},
			{ID: 44, SubdomainNumber: "4.4", Title: "Prevent network attacks", DomainID: 4},
		},
	},
	{
		ID: 5, DomainNumber: 5, Name: "Identity and Access Management (IAM)", WeightPercentage: 13,
		Subdomains: []Subdomain{
			{ID: 51, SubdomainNumber: "5.1", Title: "Control physical and logical access", DomainID: 5},
			{ID: 52, SubdomainNumber: "5.2", Title: "Manage identification and authentication", DomainID: 5},
			{ID: 53, SubdomainNumber: "5.3", Title: "Federated identity management", DomainID: 5},
			{ID: 54, SubdomainNumber: "5.4", Title: "Manage authorization", DomainID: 5},
		},
	},
	{
		ID: 6, DomainNumber: 6, Name: "Security Assessment and Testing", WeightPercentage: 12,
		Subdomains: []Subdomain{
			{ID: 61, SubdomainNumber: "6.1", Title: "Design assessment strategies", DomainID: 6},
			{ID: 62, SubdomainNumber: "6.2", Title: "Conduct security assessments", DomainID: 6},
			{ID: 63, SubdomainNumber: "6.3", Title: "Collect security process data", DomainID: 6},
			{ID: 64, SubdomainNumber: "6.4", Title: "Analyze test output", DomainID: 6},
		},
	},
	{
		ID: 7, DomainNumber: 7, Name: "Security Operations", WeightPercentage: 13,
		Subdomains: []Subdomain{
			{ID: 71, SubdomainNumber: "7.1", Title: "Understand security operations", DomainID: 7},
			{ID: 72, SubdomainNumber: "7.2", Title: "Conduct logging and monitoring", DomainID: 7},
			{ID: 73, SubdomainNumber: "7.3", Title: "Perform incident management", DomainID: 7},
			{ID: 74, SubdomainNumber: "7.4", Title: "Operate security infrastructure", DomainID: 7},
		},
	},
	{
		ID: 8, DomainNumber: 8, Name: "Software Development Security", WeightPercentage: 11,
		Subdomains: []Subdomain{
			{ID: 81, SubdomainNumber: "8.1", Title: "Integrate security in SDLC", DomainID: 8},
			{ID: 82, SubdomainNumber: "8.2", Title: "Identify security controls", DomainID: 8},
			{ID: 83, SubdomainNumber: "8.3", Title: "Assess software security", DomainID: 8},
			{ID: 84, SubdomainNumber: "8.4", Title: "Secure software environments", DomainID: 8},
		},
	},
}

// DomainName resolves a domain id to its display name, or "Domain N" when
// the id falls outside the taxonomy.
func DomainName(id int) string {
	for _, d := range CISSPDomains {
		if d.ID == id {
			return d.Name
		}
	}
	return "Domain " + strconv.Itoa(id)
}
