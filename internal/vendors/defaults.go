package vendors

// defaultEntries is the built-in vendor dictionary used when no external
// file is configured. Tier 1 covers the hyperscalers and the vendors
// whose pricing moves the whole channel; tier 2 the major platform and
// security vendors; tier 3 established suppliers; tier 4 distributors
// and resellers.
var defaultEntries = map[string]Entry{
	// Cloud and platform giants
	"microsoft": {Tier: 1, Aliases: []string{"msft", "azure", "office365", "teams", "sharepoint", "dynamics365", "m365", "o365"}},
	"google cloud": {Tier: 1, Aliases: []string{"gcp", "google workspace", "gsuite", "bigquery"}},
	"aws": {Tier: 1, Aliases: []string{"amazon web services", "ec2", "s3", "aws cloud"}},
	"oracle": {Tier: 1, Aliases: []string{"oracle cloud", "oci", "oracle database", "fusion apps"}},
	"sap": {Tier: 2, Aliases: []string{"sap hana", "sap s4 hana", "sap ariba", "sap cloud"}},
	"salesforce": {Tier: 2, Aliases: []string{"sfdc", "sales cloud", "service cloud", "marketing cloud"}},

	// Infrastructure and hardware
	"dell": {Tier: 2, Aliases: []string{"emc", "dell emc", "poweredge", "vxrail"}},
	"hpe": {Tier: 2, Aliases: []string{"hewlett packard enterprise", "proliant", "nimble storage", "aruba networks", "greenlake"}},
	"lenovo": {Tier: 3, Aliases: []string{"thinkpad", "lenovo servers"}},
	"cisco": {Tier: 1, Aliases: []string{"webex", "meraki", "umbrella", "anyconnect", "catalyst"}},
	"juniper": {Tier: 3, Aliases: []string{"juniper networks", "mist"}},
	"netapp": {Tier: 3, Aliases: []string{"ontap", "netapp storage"}},

	// Security
	"crowdstrike": {Tier: 2, CloudSecurity: true, Aliases: []string{"falcon", "crowdstrike falcon", "cs falcon"}},
	"zscaler": {Tier: 2, CloudSecurity: true, Aliases: []string{"zpa", "zscaler internet access", "zia"}},
	"fortinet": {Tier: 2, CloudSecurity: true, Aliases: []string{"fortigate", "fortianalyzer", "fortinet security"}},
	"palo alto networks": {Tier: 2, CloudSecurity: true, Aliases: []string{"palo alto", "pan-os", "cortex xdr", "prisma cloud"}},
	"sentinelone": {Tier: 3, CloudSecurity: true, Aliases: []string{"singularity xdr", "sentinel one"}},
	"wiz": {Tier: 3, CloudSecurity: true, Aliases: []string{"wiz.io"}},
	"proofpoint": {Tier: 3, Aliases: []string{"proofpoint email protection"}},
	"trend micro": {Tier: 3, Aliases: []string{"deep security", "cloud one"}},
	"check point": {Tier: 3, Aliases: []string{"checkpoint", "harmony"}},

	// Software and virtualisation
	"broadcom": {Tier: 1, Consolidator: true, Aliases: []string{"avago"}},
	"vmware": {Tier: 1, Aliases: []string{"vsphere", "vcenter", "esxi", "nsx", "workspace one", "vmware by broadcom"}},
	"citrix": {Tier: 2, Aliases: []string{"citrix workspace", "xenserver"}},
	"adobe": {Tier: 2, Aliases: []string{"creative cloud", "acrobat", "adobe sign"}},
	"atlassian": {Tier: 2, Aliases: []string{"jira", "confluence", "bitbucket"}},
	"zoom": {Tier: 3, Aliases: []string{"zoom meetings", "zoom phone"}},
	"workday": {Tier: 3, Aliases: []string{"workday hcm", "workday payroll"}},
	"servicenow": {Tier: 2, Aliases: []string{"now platform"}},
	"symantec": {Tier: 3, Aliases: []string{"symantec endpoint protection"}},
	"splunk": {Tier: 2, Aliases: []string{"splunk cloud", "splunk enterprise"}},
	"ivanti": {Tier: 3, Aliases: []string{"mobileiron", "pulse secure"}},
	"connectwise": {Tier: 3, Aliases: []string{"screenconnect", "connectwise automate"}},
	"kaseya": {Tier: 3, Consolidator: true, Aliases: []string{"vsa", "datto"}},

	// Distribution and resale
	"td synnex": {Tier: 4, Aliases: []string{"tech data", "synnex"}},
	"ingram micro": {Tier: 4, Aliases: []string{"ingram", "ingramcloud"}},
	"arrow electronics": {Tier: 4, Aliases: []string{"arrow cloud"}},
	"cdw": {Tier: 4, Aliases: []string{"cdw corporation", "cdwg"}},
	"shi": {Tier: 4, Aliases: []string{"shi international"}},
	"insight enterprises": {Tier: 4, Aliases: []string{"insight global"}},
	"softchoice": {Tier: 4, Aliases: []string{"softchoice corporation"}},
}

// defaultAcquisitions are the channel-relevant acquisition edges.
var defaultAcquisitions = []Acquisition{
	{Acquirer: "broadcom", Target: "vmware", Year: 2023},
	{Acquirer: "broadcom", Target: "symantec", Year: 2019},
	{Acquirer: "cisco", Target: "splunk", Year: 2024},
}

// Default returns the built-in dictionary. It is validated at call time
// so tests exercising New cover the same path.
func Default() *Dictionary {
	d, err := New(defaultEntries, defaultAcquisitions)
	if err != nil {
		panic("built-in vendor dictionary invalid: " + err.Error())
	}
	return d
}
