// internal/domain/models/profile.go
package models

// Profile is the applicant-supplied data shared by Registration and User.
// Approval copies it verbatim from the registration onto the new user.
type Profile struct {
	Name           string `bson:"name" json:"name"`
	Email          string `bson:"email" json:"email"` // trimmed, lowercased
	CompanyName    string `bson:"company_name" json:"companyName"`
	Profession     string `bson:"profession" json:"profession"`
	Nationality    string `bson:"nationality" json:"nationality"`
	MembershipType string `bson:"membership_type" json:"membershipType"`
	Mobile         string `bson:"mobile" json:"mobile"`

	Designation             string `bson:"designation,omitempty" json:"designation,omitempty"`
	BusinessActivity        string `bson:"business_activity,omitempty" json:"businessActivity,omitempty"`
	SponsorName             string `bson:"sponsor_name,omitempty" json:"sponsorName,omitempty"`
	PassportNumber          string `bson:"passport_number,omitempty" json:"passportNumber,omitempty"`
	CivilID                 string `bson:"civil_id,omitempty" json:"civilId,omitempty"`
	Address                 string `bson:"address,omitempty" json:"address,omitempty"`
	OfficePhone             string `bson:"office_phone,omitempty" json:"officePhone,omitempty"`
	AlternateMobile         string `bson:"alternate_mobile,omitempty" json:"alternateMobile,omitempty"`
	AlternateEmail          string `bson:"alternate_email,omitempty" json:"alternateEmail,omitempty"`
	IndustrySector          string `bson:"industry_sector,omitempty" json:"industrySector,omitempty"`
	AlternateIndustrySector string `bson:"alternate_industry_sector,omitempty" json:"alternateIndustrySector,omitempty"`
	CompanyAddress          string `bson:"company_address,omitempty" json:"companyAddress,omitempty"`
	CompanyWebsite          string `bson:"company_website,omitempty" json:"companyWebsite,omitempty"`
	BenefitFromOrg          string `bson:"benefit_from_org,omitempty" json:"benefitFromOrg,omitempty"`
	ContributeToOrg         string `bson:"contribute_to_org,omitempty" json:"contributeToOrg,omitempty"`
	Proposer1               string `bson:"proposer1,omitempty" json:"proposer1,omitempty"`
	Proposer2               string `bson:"proposer2,omitempty" json:"proposer2,omitempty"`

	Photo BlobRef `bson:"photo,omitempty" json:"photo,omitempty"`
}
