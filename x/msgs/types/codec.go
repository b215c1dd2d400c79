package types

var (
	coinSchema = NewSchema("cosmos.base.v1beta1.Coin",
		field(1, "denom", KindString),
		field(2, "amount", KindString),
	)

	inputSchema = NewSchema("cosmos.bank.v1beta1.Input",
		field(1, "address", KindAccAddress),
		repeated(message(2, "coins", coinSchema)),
	)

	outputSchema = NewSchema("cosmos.bank.v1beta1.Output",
		field(1, "address", KindAccAddress),
		repeated(message(2, "coins", coinSchema)),
	)
)

// descriptorTable is the full set of messages a wallet can translate.
var descriptorTable = []*MessageDescriptor{
	// bank
	NewMessageDescriptor(AminoMsgSend, TypeURLMsgSend, NewSchema("cosmos.bank.v1beta1.MsgSend",
		field(1, "from_address", KindAccAddress),
		field(2, "to_address", KindAccAddress),
		repeated(message(3, "amount", coinSchema)),
	)).WithSigner("from_address"),
	NewMessageDescriptor(AminoMsgMultiSend, TypeURLMultiSend, NewSchema("cosmos.bank.v1beta1.MsgMultiSend",
		repeated(message(1, "inputs", inputSchema)),
		repeated(message(2, "outputs", outputSchema)),
	)),

	// gov
	NewMessageDescriptor(AminoMsgSubmitProposal, TypeURLMsgSubmitProposal, NewSchema("cosmos.gov.v1beta1.MsgSubmitProposal",
		field(1, "content", KindAny),
		repeated(message(2, "initial_deposit", coinSchema)),
		field(3, "proposer", KindAccAddress),
	)).WithSigner("proposer"),
	NewMessageDescriptor(AminoMsgVote, TypeURLMsgVote, NewSchema("cosmos.gov.v1beta1.MsgVote",
		field(1, "proposal_id", KindUint64),
		field(2, "voter", KindAccAddress),
		field(3, "option", KindEnum),
	)).WithSigner("voter"),
	NewMessageDescriptor(AminoMsgDeposit, TypeURLMsgDeposit, NewSchema("cosmos.gov.v1beta1.MsgDeposit",
		field(1, "proposal_id", KindUint64),
		field(2, "depositor", KindAccAddress),
		repeated(message(3, "amount", coinSchema)),
	)).WithSigner("depositor"),
	NewMessageDescriptor(AminoTextProposal, TypeURLTextProposal, NewSchema("cosmos.gov.v1beta1.TextProposal",
		field(1, "title", KindString),
		field(2, "description", KindString),
	)),

	// distribution
	NewMessageDescriptor(AminoMsgSetWithdrawAddress, TypeURLSetWithdrawAddress, NewSchema("cosmos.distribution.v1beta1.MsgSetWithdrawAddress",
		field(1, "delegator_address", KindAccAddress),
		field(2, "withdraw_address", KindAccAddress),
	)).WithSigner("delegator_address"),
	NewMessageDescriptor(AminoMsgWithdrawDelegatorReward, TypeURLWithdrawDelegatorReward, NewSchema("cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward",
		field(1, "delegator_address", KindAccAddress),
		field(2, "validator_address", KindValAddress),
	)).WithSigner("delegator_address"),
	NewMessageDescriptor(AminoMsgWithdrawValidatorCommission, TypeURLWithdrawValidatorCommission, NewSchema("cosmos.distribution.v1beta1.MsgWithdrawValidatorCommission",
		field(1, "validator_address", KindValAddress),
	)).WithSigner("validator_address"),
	NewMessageDescriptor(AminoMsgFundCommunityPool, TypeURLFundCommunityPool, NewSchema("cosmos.distribution.v1beta1.MsgFundCommunityPool",
		repeated(message(1, "amount", coinSchema)),
		field(2, "depositor", KindAccAddress),
	)).WithSigner("depositor"),

	// staking
	NewMessageDescriptor(AminoMsgDelegate, TypeURLMsgDelegate, NewSchema("cosmos.staking.v1beta1.MsgDelegate",
		field(1, "delegator_address", KindAccAddress),
		field(2, "validator_address", KindValAddress),
		message(3, "amount", coinSchema),
	)).WithSigner("delegator_address"),
	NewMessageDescriptor(AminoMsgUndelegate, TypeURLMsgUndelegate, NewSchema("cosmos.staking.v1beta1.MsgUndelegate",
		field(1, "delegator_address", KindAccAddress),
		field(2, "validator_address", KindValAddress),
		message(3, "amount", coinSchema),
	)).WithSigner("delegator_address"),
	NewMessageDescriptor(AminoMsgBeginRedelegate, TypeURLMsgBeginRedelegate, NewSchema("cosmos.staking.v1beta1.MsgBeginRedelegate",
		field(1, "delegator_address", KindAccAddress),
		field(2, "validator_src_address", KindValAddress),
		field(3, "validator_dst_address", KindValAddress),
		message(4, "amount", coinSchema),
	)).WithSigner("delegator_address"),

	// compute
	NewMessageDescriptor(AminoMsgExecuteContract, TypeURLExecuteContract, NewSchema("secret.compute.v1beta1.MsgExecuteContract",
		field(1, "sender", KindAddressBytes),
		field(2, "contract", KindAddressBytes),
		field(3, "msg", KindBytes),
		field(4, "callback_code_hash", KindString),
		repeated(message(5, "sent_funds", coinSchema)),
		field(6, "callback_sig", KindBytes),
	), "callback_code_hash", "callback_sig").WithSigner("sender"),
	NewMessageDescriptor(AminoMsgInstantiateContract, TypeURLInstantiateContract, NewSchema("secret.compute.v1beta1.MsgInstantiateContract",
		field(1, "sender", KindAddressBytes),
		field(2, "callback_code_hash", KindString),
		field(3, "code_id", KindUint64),
		field(4, "label", KindString),
		field(5, "init_msg", KindBytes),
		repeated(message(6, "init_funds", coinSchema)),
		field(7, "callback_sig", KindBytes),
		field(8, "admin", KindAccAddress),
	), "callback_code_hash", "callback_sig").WithSigner("sender"),
}

// RegisterMessages adds every supported message family to r.
func RegisterMessages(r *Registry) error {
	return r.Register(descriptorTable...)
}

// NewDefaultRegistry returns a registry holding every supported message family.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterMessages(r); err != nil {
		panic(err)
	}
	return r
}
