package repoargs

type RepositoryName string

const (
	UserRepoName     RepositoryName = "user"
	WalletRepoName   RepositoryName = "wallet"
	PaymentRepoName  RepositoryName = "payment"
	CampaignRepoName RepositoryName = "campaign"
)
