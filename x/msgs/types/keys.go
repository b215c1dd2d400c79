package types

const (
	ModuleName = "msgs"

	// ValoperSuffix is appended to the account prefix for validator operator addresses.
	ValoperSuffix = "valoper"

	anyTypeURLKey = "typeUrl"
	anyValueKey   = "value"
)

// Amino type names and proto type URLs of the registered message families.
const (
	AminoMsgSend      = "cosmos-sdk/MsgSend"
	AminoMsgMultiSend = "cosmos-sdk/MsgMultiSend"
	TypeURLMsgSend    = "/cosmos.bank.v1beta1.MsgSend"
	TypeURLMultiSend  = "/cosmos.bank.v1beta1.MsgMultiSend"

	AminoMsgSubmitProposal   = "cosmos-sdk/MsgSubmitProposal"
	AminoMsgVote             = "cosmos-sdk/MsgVote"
	AminoMsgDeposit          = "cosmos-sdk/MsgDeposit"
	AminoTextProposal        = "cosmos-sdk/TextProposal"
	TypeURLMsgSubmitProposal = "/cosmos.gov.v1beta1.MsgSubmitProposal"
	TypeURLMsgVote           = "/cosmos.gov.v1beta1.MsgVote"
	TypeURLMsgDeposit        = "/cosmos.gov.v1beta1.MsgDeposit"
	TypeURLTextProposal      = "/cosmos.gov.v1beta1.TextProposal"

	AminoMsgWithdrawDelegatorReward     = "cosmos-sdk/MsgWithdrawDelegationReward"
	AminoMsgSetWithdrawAddress          = "cosmos-sdk/MsgModifyWithdrawAddress"
	AminoMsgWithdrawValidatorCommission = "cosmos-sdk/MsgWithdrawValCommission"
	AminoMsgFundCommunityPool           = "cosmos-sdk/MsgFundCommunityPool"
	TypeURLWithdrawDelegatorReward      = "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
	TypeURLSetWithdrawAddress           = "/cosmos.distribution.v1beta1.MsgSetWithdrawAddress"
	TypeURLWithdrawValidatorCommission  = "/cosmos.distribution.v1beta1.MsgWithdrawValidatorCommission"
	TypeURLFundCommunityPool            = "/cosmos.distribution.v1beta1.MsgFundCommunityPool"

	AminoMsgDelegate          = "cosmos-sdk/MsgDelegate"
	AminoMsgUndelegate        = "cosmos-sdk/MsgUndelegate"
	AminoMsgBeginRedelegate   = "cosmos-sdk/MsgBeginRedelegate"
	TypeURLMsgDelegate        = "/cosmos.staking.v1beta1.MsgDelegate"
	TypeURLMsgUndelegate      = "/cosmos.staking.v1beta1.MsgUndelegate"
	TypeURLMsgBeginRedelegate = "/cosmos.staking.v1beta1.MsgBeginRedelegate"

	AminoMsgExecuteContract     = "wasm/MsgExecuteContract"
	AminoMsgInstantiateContract = "wasm/MsgInstantiateContract"
	TypeURLExecuteContract      = "/secret.compute.v1beta1.MsgExecuteContract"
	TypeURLInstantiateContract  = "/secret.compute.v1beta1.MsgInstantiateContract"
)
